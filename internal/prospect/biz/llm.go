package biz

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
)

// LLM is the chat-completion capability the pipeline needs.
type LLM interface {
	CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error)
}

// PromptConfig holds the sampling settings for one prompt family.
type PromptConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

func complete(ctx context.Context, llm LLM, cfg PromptConfig, system, user string) (string, error) {
	req := types.NewPrompt(system, user, cfg.MaxTokens, cfg.Temperature)
	req.Model = cfg.Model

	resp, err := llm.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", types.ErrEmptyResponse
	}
	return text, nil
}

var (
	errNotJSON      = errors.New("response is not valid json")
	errNotArray     = errors.New("response is not a json array")
	errNotObject    = errors.New("response is not a json object")
	errNoQueries    = errors.New("no usable queries in response")
	lineCommentExpr = regexp.MustCompile(`(?m)[ \t]+//[^\n]*$`)
)

// cleanJSON strips code fences, a leading "json" tag, line comments and any
// prose around the outermost JSON value.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = strings.TrimSpace(s[4:])
	}
	s = lineCommentExpr.ReplaceAllString(s, "")

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// parseArray decodes raw as a JSON array.
func parseArray(stage, raw string) ([]gjson.Result, error) {
	s := cleanJSON(raw)
	if !gjson.Valid(s) {
		return nil, &ParseError{Stage: stage, Raw: raw, Err: errNotJSON}
	}
	v := gjson.Parse(s)
	if !v.IsArray() {
		return nil, &ParseError{Stage: stage, Raw: raw, Err: errNotArray}
	}
	return v.Array(), nil
}

// parseObject decodes raw as a JSON object. An array yields its first element.
func parseObject(stage, raw string) (gjson.Result, error) {
	s := cleanJSON(raw)
	if !gjson.Valid(s) {
		return gjson.Result{}, &ParseError{Stage: stage, Raw: raw, Err: errNotJSON}
	}
	v := gjson.Parse(s)
	if v.IsArray() {
		v = v.Get("0")
	}
	if !v.IsObject() {
		return gjson.Result{}, &ParseError{Stage: stage, Raw: raw, Err: errNotObject}
	}
	return v, nil
}

// fieldValues reads the record fields from a decoded object. Numbers are
// stringified and nulls are treated as empty.
func fieldValues(obj gjson.Result) map[Field]string {
	out := make(map[Field]string, len(RecordFields))
	for _, f := range RecordFields {
		v := obj.Get(string(f))
		switch v.Type {
		case gjson.String, gjson.Number:
			out[f] = strings.TrimSpace(v.String())
		case gjson.JSON:
			if v.IsArray() {
				out[f] = strings.TrimSpace(v.Get("0").String())
			}
		}
	}
	return out
}
