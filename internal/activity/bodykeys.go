package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// DefaultMaxBodyBytes bounds how much of a request body is inspected for keys.
const DefaultMaxBodyBytes int64 = 1 << 20

// password is always denied, whatever the configured list says.
var alwaysSensitive = []string{"password"}

type keyFilter map[string]struct{}

func newKeyFilter(extra []string) keyFilter {
	f := make(keyFilter, len(alwaysSensitive)+len(extra))
	for _, k := range append(append([]string{}, alwaysSensitive...), extra...) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			f[k] = struct{}{}
		}
	}
	return f
}

func (f keyFilter) allowed(key string) bool {
	_, denied := f[strings.ToLower(key)]
	return !denied
}

func (f keyFilter) apply(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if f.allowed(k) {
			out = append(out, k)
		}
	}
	return out
}

type restoredBody struct {
	io.Reader
	io.Closer
}

// captureBodyKeys returns the top-level field names of the request body with
// denied names removed. The body stream is restored so handlers read it unchanged.
// Bodies over maxBytes, non-object JSON and unparsable payloads yield no keys.
func captureBodyKeys(req *http.Request, maxBytes int64, filter keyFilter) []string {
	if req.Body == nil || req.Body == http.NoBody {
		return []string{}
	}

	orig := req.Body
	buf, err := io.ReadAll(io.LimitReader(orig, maxBytes+1))
	req.Body = restoredBody{Reader: io.MultiReader(bytes.NewReader(buf), orig), Closer: orig}
	if err != nil || int64(len(buf)) > maxBytes || len(buf) == 0 {
		return []string{}
	}

	mediaType, params, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	var keys []string
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		keys = formKeys(buf)
	case mediaType == "multipart/form-data":
		keys = multipartKeys(buf, params["boundary"])
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"), mediaType == "":
		keys = jsonObjectKeys(buf)
	}
	return filter.apply(keys)
}

// jsonObjectKeys lists the keys of a JSON object in document order, without duplicates.
func jsonObjectKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	keys := make([]string, 0)
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if _, err := dec.Token(); err != nil {
		return nil
	}
	return keys
}

func formKeys(data []byte) []string {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// multipartKeys lists non-file form fields.
func multipartKeys(data []byte, boundary string) []string {
	if boundary == "" {
		return nil
	}
	mr := multipart.NewReader(bytes.NewReader(data), boundary)
	seen := make(map[string]struct{})
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil
		}
		if name := part.FormName(); name != "" && part.FileName() == "" {
			seen[name] = struct{}{}
		}
		_ = part.Close()
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// queryMap mirrors the parsed query-string: single values as string, repeated values as a list.
func queryMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
			out[k] = ""
		case 1:
			out[k] = v[0]
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}
