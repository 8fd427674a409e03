package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TrialsClient searches a clinical-trials registry for recruiting studies
// matching the given conditions.
type TrialsClient interface {
	Search(ctx context.Context, conditions []string, maxResults int) ([]Study, error)
}

// CTGovClient talks to the ClinicalTrials.gov v2 studies API.
type CTGovClient struct {
	baseURL string
	client  *http.Client
}

func NewCTGovClient(baseURL string, client *http.Client) *CTGovClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &CTGovClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type ctGovReply struct {
	Studies []struct {
		ProtocolSection struct {
			Identification struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			Description struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
			Design struct {
				Phases []string `json:"phases"`
			} `json:"designModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

func (c *CTGovClient) Search(ctx context.Context, conditions []string, maxResults int) ([]Study, error) {
	params := url.Values{
		"query.cond":           []string{strings.Join(conditions, "|")},
		"filter.overallStatus": []string{"RECRUITING|NOT_YET_RECRUITING"},
		"sort":                 []string{"LastUpdatePostDate:desc"},
		"pageSize":             []string{strconv.Itoa(maxResults)},
		"format":               []string{"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "trials search")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trials registry returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var reply ctGovReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "trials decode")
	}

	studies := make([]Study, 0, len(reply.Studies))
	for _, s := range reply.Studies {
		protocol := s.ProtocolSection
		nctID := protocol.Identification.NCTID
		if nctID == "" {
			nctID = "Unknown"
		}
		title := protocol.Identification.BriefTitle
		if title == "" {
			title = "Clinical Trial"
		}
		phase := "PHASE1"
		if len(protocol.Design.Phases) > 0 {
			phase = protocol.Design.Phases[0]
		}
		summary := protocol.Description.BriefSummary
		if summary == "" {
			summary = "Cognitive health research trial"
		}
		if len(summary) > 200 {
			summary = summary[:200] + "..."
		}
		studies = append(studies, Study{
			NCTID:   nctID,
			Title:   title,
			Summary: summary,
			Phase:   phase,
		})
	}
	return studies, nil
}
