package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/pagination"
	"github.com/angelmondragon/finblog-client/pkg/types"
	"github.com/tidwall/gjson"
)

// explicitFailure reports a 2xx body that still carries success=false.
func explicitFailure(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	success := gjson.GetBytes(raw, "success")
	return success.Exists() && success.Type == gjson.False
}

// normalizeFailure builds the error for a failed response. The message prefers
// the top-level message, then error.message, then fallback. The code prefers
// error.code, then a top-level code, then UNKNOWN_ERROR.
func normalizeFailure(status int, raw []byte, fallback string) *pkgerrors.Error {
	message := ""
	code := ""
	var details any

	if gjson.ValidBytes(raw) {
		parsed := gjson.ParseBytes(raw)
		message = firstNonEmpty(
			parsed.Get("message").String(),
			parsed.Get("error.message").String(),
		)
		if errField := parsed.Get("error"); errField.Type == gjson.String {
			message = firstNonEmpty(message, errField.String())
		}
		code = firstNonEmpty(
			parsed.Get("error.code").String(),
			parsed.Get("code").String(),
		)
		if d := parsed.Get("error.details"); d.Exists() && d.Type != gjson.Null {
			details = json.RawMessage(d.Raw)
		}
	}

	if message == "" {
		message = fallback
	}
	if code == "" {
		code = string(pkgerrors.CodeUnknown)
	}

	normalized := pkgerrors.New(pkgerrors.Code(code), message).WithStatus(status)
	if details != nil {
		normalized = normalized.WithDetails(details)
	}
	return normalized
}

// decodeEnvelope reads a success body. Bodies without a success flag are
// treated as bare data, and empty bodies as a successful empty envelope.
func decodeEnvelope(raw []byte) (types.Envelope, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return types.Envelope{Success: true}, nil
	}
	if !gjson.Valid(trimmed) {
		return types.Envelope{}, fmt.Errorf("response is not valid json")
	}
	if !gjson.Get(trimmed, "success").Exists() {
		return types.Envelope{Success: true, Data: json.RawMessage(trimmed)}, nil
	}
	var envelope types.Envelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return types.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope, nil
}

// DecodeData unmarshals the envelope data into T.
func DecodeData[T any](resp *Response) (T, error) {
	var out T
	if resp == nil || len(resp.Envelope.Data) == 0 || string(resp.Envelope.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(resp.Envelope.Data, &out); err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode response data").WithStatus(resp.Status)
	}
	return out, nil
}

// PatchData returns the envelope data when it is a JSON object. Otherwise the
// submitted payload stands in, so the caller can apply its own change locally.
// A nil submitted payload yields nil. The patch must decode into E.
func PatchData[E any](resp *Response, submitted any) (json.RawMessage, error) {
	status := 0
	var raw json.RawMessage
	if resp != nil {
		status = resp.Status
		if gjson.ParseBytes(resp.Envelope.Data).IsObject() {
			raw = resp.Envelope.Data
		}
	}
	if raw == nil {
		if submitted == nil {
			return nil, nil
		}
		encoded, err := json.Marshal(submitted)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "encode submitted payload")
		}
		raw = encoded
	}
	var probe E
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode response data").WithStatus(status)
	}
	return raw, nil
}

// DecodeList extracts a list and its canonical pagination. data may be the
// bare array, with pagination at the envelope level, or an {items,pagination}
// object.
func DecodeList[T any](resp *Response, limit int) ([]T, pagination.Page, error) {
	if resp == nil {
		return nil, pagination.Page{}, nil
	}
	data := resp.Envelope.Data
	rawPagination := resp.Envelope.Pagination

	var items []T
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode list").WithStatus(resp.Status)
		}
	default:
		var payload types.ListPayload[T]
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode list payload").WithStatus(resp.Status)
		}
		items = payload.Items
		if len(payload.Pagination) > 0 {
			rawPagination = payload.Pagination
		}
	}
	if items == nil {
		items = []T{}
	}

	page, err := pagination.Decode(rawPagination, limit, len(items))
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode pagination").WithStatus(resp.Status)
	}
	return items, page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
