package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rebelchris/recallect/internal/llm"
)

type MockCall struct {
	Query  string
	Params map[string]any
}

// MockDriver answers each query with a canned result keyed by the query text.
type MockDriver struct {
	Results map[string]neo4j.EagerResult
	Errs    map[string]error
	Calls   []MockCall
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Calls = append(m.Calls, MockCall{Query: query, Params: params})
	if err := m.Errs[query]; err != nil {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func (m *MockDriver) CallsTo(query string) []MockCall {
	var out []MockCall
	for _, c := range m.Calls {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

func record(fields map[string]any) *neo4j.Record {
	rec := &neo4j.Record{}
	for k, v := range fields {
		rec.Keys = append(rec.Keys, k)
		rec.Values = append(rec.Values, v)
	}
	return rec
}

func records(rows ...map[string]any) neo4j.EagerResult {
	res := neo4j.EagerResult{Records: []*neo4j.Record{}}
	for _, r := range rows {
		res.Records = append(res.Records, record(r))
	}
	return res
}

type MockJSONClient struct {
	Response map[string]any
	Calls    int
}

func (m *MockJSONClient) CompleteJSON(ctx context.Context, messages []llm.Message) map[string]any {
	m.Calls++
	return m.Response
}
