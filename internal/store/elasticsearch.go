package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// Audit document kinds.
const (
	DocVerdict = "verdict"
	DocRun     = "run"
)

// ElasticsearchAudit indexes verdicts and run summaries into one index so
// they can be searched per project.
type ElasticsearchAudit struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchAudit(client *elasticsearch.Client, index string) *ElasticsearchAudit {
	if index == "" {
		index = "site-pipeline-audit"
	}
	return &ElasticsearchAudit{client: client, index: index}
}

type verdictDocument struct {
	Kind string `json:"kind"`
	VerdictRecord
}

type runDocument struct {
	Kind string `json:"kind"`
	RunRecord
}

func (a *ElasticsearchAudit) RecordVerdict(ctx context.Context, rec VerdictRecord) error {
	id := fmt.Sprintf("%s-verdict-%d", rec.RunID, rec.Attempt)
	return a.put(ctx, id, verdictDocument{Kind: DocVerdict, VerdictRecord: rec})
}

func (a *ElasticsearchAudit) RecordRun(ctx context.Context, rec RunRecord) error {
	return a.put(ctx, rec.RunID+"-run", runDocument{Kind: DocRun, RunRecord: rec})
}

func (a *ElasticsearchAudit) put(ctx context.Context, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(id),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index %s: %s", id, res.Status())
	}
	return nil
}
