package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

// ElasticsearchSink indexes each record as a document with the record id.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	prefix string
}

// NewElasticsearchSink writes to index "<prefix><collection>".
func NewElasticsearchSink(client *elasticsearch.Client, indexPrefix string) (*ElasticsearchSink, error) {
	if client == nil {
		return nil, errors.New("elasticsearch sink requires a client")
	}
	return &ElasticsearchSink{client: client, prefix: indexPrefix}, nil
}

func (s *ElasticsearchSink) Add(ctx context.Context, collection string, rec *biz.BusinessRecord) (bool, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		s.client.Index.WithContext(ctx),
	}
	if rec.ID != "" {
		opts = append(opts, s.client.Index.WithDocumentID(rec.ID))
	}

	res, err := s.client.Index(s.prefix+collection, bytes.NewReader(doc), opts...)
	if err != nil {
		return false, fmt.Errorf("index record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("index record: %s", res.String())
	}
	return true, nil
}
