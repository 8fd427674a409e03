package evidence

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LiteratureClient searches a literature registry. Implementations must
// respect context cancellation; the resolver bounds every call with a
// timeout.
type LiteratureClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]Paper, error)
}

// PubMedClient talks to the NCBI e-utilities endpoints: esearch for PMIDs,
// efetch for article details.
type PubMedClient struct {
	baseURL string
	client  *http.Client
}

func NewPubMedClient(baseURL string, client *http.Client) *PubMedClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &PubMedClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *PubMedClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	pmids, err := c.search(ctx, query, maxResults)
	if err != nil {
		return nil, errors.Wrap(err, "pubmed search")
	}
	if len(pmids) == 0 {
		return nil, nil
	}
	papers, err := c.fetch(ctx, pmids)
	if err != nil {
		return nil, errors.Wrap(err, "pubmed fetch")
	}
	rankPapers(papers, query)
	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}
	return papers, nil
}

type esearchReply struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (c *PubMedClient) search(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := url.Values{
		"db":      []string{"pubmed"},
		"term":    []string{query},
		"retmax":  []string{strconv.Itoa(maxResults)},
		"retmode": []string{"json"},
		"sort":    []string{"relevance"},
	}
	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, err
	}
	var reply esearchReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, err
	}
	return reply.ESearchResult.IDList, nil
}

// efetch XML shapes, trimmed to the fields the citation view needs.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Text []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Journal struct {
				Title string `xml:"Title"`
				Issue struct {
					PubDate struct {
						Year string `xml:"Year"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			AuthorList struct {
				Authors []struct {
					LastName string `xml:"LastName"`
					ForeName string `xml:"ForeName"`
				} `xml:"Author"`
			} `xml:"AuthorList"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

func (c *PubMedClient) fetch(ctx context.Context, pmids []string) ([]Paper, error) {
	params := url.Values{
		"db":      []string{"pubmed"},
		"id":      []string{strings.Join(pmids, ",")},
		"retmode": []string{"xml"},
	}
	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(set.Articles))
	for _, article := range set.Articles {
		cit := article.Citation
		authors := make([]string, 0, 3)
		for _, a := range cit.Article.AuthorList.Authors {
			if a.LastName == "" || a.ForeName == "" {
				continue
			}
			authors = append(authors, fmt.Sprintf("%s %s", a.ForeName, a.LastName))
			if len(authors) == 3 {
				break
			}
		}
		title := cit.Article.Title
		if title == "" {
			title = "No title"
		}
		journal := cit.Article.Journal.Title
		if journal == "" {
			journal = "Unknown journal"
		}
		year := cit.Article.Journal.Issue.PubDate.Year
		if year == "" {
			year = "Unknown year"
		}
		abstract := strings.Join(cit.Article.Abstract.Text, " ")
		if len(abstract) > 500 {
			abstract = abstract[:500] + "..."
		}
		papers = append(papers, Paper{
			PMID:     cit.PMID,
			Title:    title,
			Authors:  authors,
			Journal:  journal,
			Year:     year,
			Abstract: abstract,
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", cit.PMID),
		})
	}
	return papers, nil
}

func (c *PubMedClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// rankPapers orders papers by how often query terms occur in title and
// abstract. Stable sort keeps registry relevance order among ties.
func rankPapers(papers []Paper, query string) {
	terms := strings.Fields(strings.ToLower(query))
	for i := range papers {
		text := strings.ToLower(papers[i].Title + " " + papers[i].Abstract)
		score := 0
		for _, term := range terms {
			score += strings.Count(text, term)
		}
		papers[i].RelevanceScore = score
	}
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].RelevanceScore > papers[j].RelevanceScore
	})
}
