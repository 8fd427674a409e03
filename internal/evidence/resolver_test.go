package evidence_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognitriage/cognitriage/internal/evidence"
)

const esearchReply = `{"esearchresult": {"idlist": ["38111111", "38222222"]}}`

const efetchReply = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38111111</PMID>
      <Article>
        <ArticleTitle>Hippocampal atrophy and mild cognitive impairment in alzheimer disease</ArticleTitle>
        <Abstract>
          <AbstractText>Longitudinal volumetry study.</AbstractText>
        </Abstract>
        <Journal>
          <Title>Neurology</Title>
          <JournalIssue>
            <PubDate><Year>2023</Year></PubDate>
          </JournalIssue>
        </Journal>
        <AuthorList>
          <Author><LastName>Smith</LastName><ForeName>John</ForeName></Author>
          <Author><LastName>Brown</LastName><ForeName>Alice</ForeName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>38222222</PMID>
      <Article>
        <ArticleTitle>Unrelated biology paper</ArticleTitle>
        <Journal>
          <Title>Cell</Title>
          <JournalIssue>
            <PubDate><Year>2022</Year></PubDate>
          </JournalIssue>
        </Journal>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

const ctgovReply = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT01234567", "briefTitle": "Exercise for MCI"},
        "descriptionModule": {"briefSummary": "Aerobic training in early cognitive decline."},
        "designModule": {"phases": ["PHASE2"]}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT07654321"},
        "descriptionModule": {},
        "designModule": {}
      }
    }
  ]
}`

var _ = Describe("evidence resolver", func() {
	var (
		profile evidence.Profile
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.TODO()
		profile = evidence.Profile{
			RiskTier:           "HIGH",
			CognitiveScore:     24,
			Age:                70,
			HasImagingFindings: true,
		}
	})

	newResolver := func(pubmedURL, trialsURL string, timeout time.Duration) *evidence.Resolver {
		return evidence.NewResolver(
			evidence.NewPubMedClient(pubmedURL, &http.Client{}),
			evidence.NewCTGovClient(trialsURL, &http.Client{}),
			timeout,
			5,
		)
	}

	Context("literature", func() {
		It("maps live search results to ranked citations", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/esearch.fcgi":
					Expect(r.URL.Query().Get("db")).To(Equal("pubmed"))
					Expect(r.URL.Query().Get("term")).To(ContainSubstring("hippocampal atrophy"))
					_, _ = w.Write([]byte(esearchReply))
				case "/efetch.fcgi":
					Expect(r.URL.Query().Get("id")).To(Equal("38111111,38222222"))
					_, _ = w.Write([]byte(efetchReply))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer server.Close()

			result := newResolver(server.URL, server.URL, time.Second).ResolveLiterature(ctx, profile)

			Expect(result.SearchType).To(Equal(evidence.SearchTypeLive))
			Expect(result.Live()).To(BeTrue())
			Expect(result.TotalFound).To(Equal(2))
			Expect(result.Error).To(BeEmpty())
			Expect(result.Citations).To(HaveLen(2))

			// The term-dense paper ranks first and counts as strong evidence.
			first := result.Citations[0]
			Expect(first.PMID).To(Equal("38111111"))
			Expect(first.Title).To(Equal("Hippocampal atrophy and mild cognitive impairment in alzheimer disease"))
			Expect(first.Source).To(Equal("Neurology (2023)"))
			Expect(first.Link).To(Equal("https://pubmed.ncbi.nlm.nih.gov/38111111/"))
			Expect(first.Authors).To(Equal("John Smith, Alice Brown"))
			Expect(first.Strength).To(Equal("high"))

			second := result.Citations[1]
			Expect(second.PMID).To(Equal("38222222"))
			Expect(second.Strength).To(Equal("moderate"))
			Expect(second.Authors).To(Equal("Unknown"))
		})

		It("substitutes the static set when the search comes back empty", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"esearchresult": {"idlist": []}}`))
			}))
			defer server.Close()

			result := newResolver(server.URL, server.URL, time.Second).ResolveLiterature(ctx, profile)

			Expect(result.SearchType).To(Equal(evidence.SearchTypeFallbackStatic))
			Expect(result.Live()).To(BeFalse())
			Expect(result.Error).To(BeEmpty())
			Expect(result.Citations).To(Equal(evidence.FallbackCitations()))
			Expect(result.TotalFound).To(Equal(evidence.StaticSetSize()))
		})

		It("substitutes the static set and records the error on upstream failure", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			result := newResolver(server.URL, server.URL, time.Second).ResolveLiterature(ctx, profile)

			Expect(result.SearchType).To(Equal(evidence.SearchTypeFallbackError))
			Expect(result.Error).NotTo(BeEmpty())
			Expect(result.Citations).To(Equal(evidence.FallbackCitations()))
		})

		It("gives up after the lookup timeout", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(500 * time.Millisecond)
				_, _ = w.Write([]byte(esearchReply))
			}))
			defer server.Close()

			start := time.Now()
			result := newResolver(server.URL, server.URL, 50*time.Millisecond).ResolveLiterature(ctx, profile)

			Expect(time.Since(start)).To(BeNumerically("<", 400*time.Millisecond))
			Expect(result.SearchType).To(Equal(evidence.SearchTypeFallbackError))
		})
	})

	Context("trials", func() {
		It("maps registry studies to scored matches", func() {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("query.cond")
				Expect(r.URL.Query().Get("filter.overallStatus")).To(Equal("RECRUITING|NOT_YET_RECRUITING"))
				_, _ = w.Write([]byte(ctgovReply))
			}))
			defer server.Close()

			trials := newResolver(server.URL, server.URL, time.Second).ResolveTrials(ctx, profile)

			Expect(gotQuery).To(Equal("Mild Cognitive Impairment|Alzheimer Disease|Cognitive Decline"))
			Expect(trials).To(HaveLen(2))

			Expect(trials[0].NCTID).To(Equal("NCT01234567"))
			Expect(trials[0].Title).To(Equal("Exercise for MCI"))
			Expect(trials[0].Phase).To(Equal("PHASE2"))
			Expect(trials[0].Status).To(Equal("Recruiting"))
			Expect(trials[0].URL).To(Equal("https://clinicaltrials.gov/study/NCT01234567"))
			Expect(trials[0].MatchScore).To(Equal("high"))
			Expect(trials[0].MatchReason).To(ContainSubstring("Strong match"))
			Expect(trials[0].Citations).To(HaveLen(2))

			// Second-place result with defaults filled in.
			Expect(trials[1].Title).To(Equal("Clinical Trial"))
			Expect(trials[1].Phase).To(Equal("PHASE1"))
			Expect(trials[1].Summary).To(Equal("Cognitive health research trial"))
			Expect(trials[1].MatchScore).To(Equal("medium"))
		})

		It("falls back to the curated trial set on registry failure", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			trials := newResolver(server.URL, server.URL, time.Second).ResolveTrials(ctx, profile)
			Expect(trials).To(Equal(evidence.FallbackTrials()))
			Expect(trials).NotTo(BeEmpty())
		})
	})

	Context("query generation", func() {
		It("includes clinical terms for elevated tiers", func() {
			query := evidence.GenerateQuery(profile)
			Expect(query).To(ContainSubstring("mild cognitive impairment OR alzheimer disease"))
			Expect(query).To(ContainSubstring("hippocampal atrophy OR medial temporal atrophy"))
			Expect(query).To(ContainSubstring("montreal cognitive assessment OR MoCA"))
			Expect(query).To(ContainSubstring("humans[Filter]"))
			Expect(query).To(ContainSubstring("2020:2024[pdat]"))
		})

		It("omits disease terms for a low-risk profile without findings", func() {
			query := evidence.GenerateQuery(evidence.Profile{RiskTier: "LOW"})
			Expect(query).NotTo(ContainSubstring("alzheimer"))
			Expect(query).NotTo(ContainSubstring("hippocampal"))
			Expect(query).To(ContainSubstring("english[Filter]"))
		})
	})
})
