package storage

import (
	"net/url"
	"strings"
)

// uriComponent undoes the escapes url.QueryEscape applies beyond encodeURIComponent,
// so values written by other tools on the same bucket compare equal.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ConvertHeaders maps the headers of an object downloaded from one kind into
// the headers to upload it with on another kind. Custom metadata keeps its
// name under the destination prefix, content-type is kept, and every other
// header is dropped.
func ConvertHeaders(headers map[string]string, from, to Kind) map[string]string {
	out := make(map[string]string)
	fromPrefix, toPrefix := from.metaPrefix(), to.metaPrefix()
	for k, v := range headers {
		key := strings.ToLower(k)
		if key == "content-type" {
			out[key] = v
			continue
		}
		name, ok := strings.CutPrefix(key, fromPrefix)
		if !ok {
			continue
		}
		out[toPrefix+name] = encodeMetaValue(v)
	}
	return out
}

// encodeMetaValue percent-encodes a metadata value unless it is already
// encoded. Values that fail to decode are returned unchanged.
func encodeMetaValue(v string) string {
	decoded, err := url.PathUnescape(v)
	if err != nil || decoded != v {
		return v
	}
	return uriComponent.Replace(url.QueryEscape(v))
}
