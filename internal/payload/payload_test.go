package payload

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/data-api/internal/errs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

const testLimit = 100 * 1024

func requireBodyErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var bodyErr *errs.BodyError
	require.True(t, errors.As(err, &bodyErr), "expected *errs.BodyError, got %v", err)
	assert.Equal(t, code, bodyErr.Code)
}

func mustMarshal(t *testing.T, v Value) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParse_RoundTripsAcceptedBodies(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "simple object", in: `{"x":1}`, out: `{"x":1}`},
		{name: "member order kept", in: `{"b":1,"a":2,"c":3}`, out: `{"b":1,"a":2,"c":3}`},
		{name: "duplicate key keeps first slot", in: `{"a":1,"b":2,"a":3}`, out: `{"a":3,"b":2}`},
		{name: "nested", in: ` {"a":[1,{"b":null}],"c":{"d":true,"e":"f"}} `, out: `{"a":[1,{"b":null}],"c":{"d":true,"e":"f"}}`},
		{name: "top-level array", in: "[1, 2.50, -3e2]", out: `[1,2.50,-3e2]`},
		{name: "empty containers", in: `{"a":{},"b":[]}`, out: `{"a":{},"b":[]}`},
		{name: "unicode escapes", in: `{"s":"café \"q\""}`, out: `{"s":"café \"q\""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.out, mustMarshal(t, v))
		})
	}
}

func TestParse_EmptyBodyIsAbsent(t *testing.T) {
	v, err := Parse(nil)
	require.NoError(t, err)

	assert.True(t, v.IsAbsent())
	assert.Equal(t, "{}", mustMarshal(t, v))
}

func TestParse_RejectsMalformedBodies(t *testing.T) {
	bodies := []string{
		`{"x":`,
		`{"x":1,}`,
		`{x:1}`,
		`{"x":1}}`,
		`{} {}`,
		`[1,2`,
		`"just a string"`,
		`42`,
		`true`,
		`null`,
		"   ",
		`<html>`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, err := Parse([]byte(body))
			requireBodyErrorCode(t, err, errs.CodeMalformedBody)
		})
	}
}

func TestValue_KindAndLen(t *testing.T) {
	v, err := Parse([]byte(`{"n":1.5,"s":"x","b":false,"z":null,"l":[1,2]}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, 5, v.Len())
	assert.Equal(t, `{"n":1.5,"s":"x","b":false,"z":null,"l":[1,2]}`, mustMarshal(t, v))

	arr, err := Parse([]byte(`[true,"x"]`))
	require.NoError(t, err)
	assert.Equal(t, KindArray, arr.Kind())
	assert.Equal(t, 2, arr.Len())

	assert.Equal(t, 0, String("abc").Len())
	assert.Equal(t, "object", v.Kind().String())
	assert.Equal(t, "absent", Absent().Kind().String())
}

func TestValue_Constructors(t *testing.T) {
	v := Object(
		Member{Key: "a", Value: Array(Number("1"), String("two"), Null())},
		Member{Key: "b", Value: Bool(true)},
		Member{Key: "a", Value: Bool(false)},
	)

	assert.Equal(t, `{"a":false,"b":true}`, mustMarshal(t, v))
}

func TestParse_NestingDepth(t *testing.T) {
	nested := func(depth int) []byte {
		return []byte(strings.Repeat("[", depth) + strings.Repeat("]", depth))
	}

	v, err := Parse(nested(MaxDepth))
	require.NoError(t, err)
	_, err = json.Marshal(v)
	assert.NoError(t, err)

	_, err = Parse(nested(MaxDepth + 1))
	requireBodyErrorCode(t, err, errs.CodeMalformedBody)

	_, err = Parse([]byte(strings.Repeat(`{"a":`, MaxDepth+1) + "1" + strings.Repeat("}", MaxDepth+1)))
	requireBodyErrorCode(t, err, errs.CodeMalformedBody)
}

func encodeAs(t *testing.T, enc encoding.Encoding, s string) string {
	t.Helper()

	out, err := enc.NewEncoder().String(s)
	require.NoError(t, err)
	return out
}

func TestFromRequest_Charsets(t *testing.T) {
	const body = `{"name":"héllo","n":1}`

	tests := []struct {
		name        string
		contentType string
		raw         string
	}{
		{name: "utf-8 with BOM", contentType: "application/json; charset=utf-8", raw: "\xef\xbb\xbf" + body},
		{name: "utf-16le", contentType: "application/json; charset=utf-16le", raw: encodeAs(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), body)},
		{name: "utf-16be", contentType: "application/json; charset=UTF-16BE", raw: encodeAs(t, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), body)},
		{name: "utf-16 BOM overrides default", contentType: "application/json; charset=utf-16", raw: encodeAs(t, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), body)},
		{name: "utf-32le", contentType: "application/json; charset=utf-32le", raw: encodeAs(t, utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), body)},
		{name: "utf-32be", contentType: "application/json; charset=utf-32be", raw: encodeAs(t, utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), body)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromRequest(newJSONRequest(tt.raw, tt.contentType), testLimit)
			require.NoError(t, err)
			assert.Equal(t, body, mustMarshal(t, v))
		})
	}

	for _, label := range []string{"utf-7", "iso-8859-1", "latin1"} {
		t.Run("rejects "+label, func(t *testing.T) {
			_, err := FromRequest(newJSONRequest(body, "application/json; charset="+label), testLimit)
			requireBodyErrorCode(t, err, errs.CodeUnsupportedCharset)
		})
	}
}

func newJSONRequest(body string, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestFromRequest(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		v, err := FromRequest(newJSONRequest(`{"x":1}`, "application/json"), testLimit)
		require.NoError(t, err)
		assert.Equal(t, `{"x":1}`, mustMarshal(t, v))
	})

	t.Run("utf-8 charset accepted", func(t *testing.T) {
		v, err := FromRequest(newJSONRequest(`{"x":1}`, "application/json; charset=UTF-8"), testLimit)
		require.NoError(t, err)
		assert.Equal(t, KindObject, v.Kind())
	})

	t.Run("non-json content type ignored", func(t *testing.T) {
		v, err := FromRequest(newJSONRequest(`{"x":`, "text/plain"), testLimit)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent())
	})

	t.Run("json suffix types ignored", func(t *testing.T) {
		v, err := FromRequest(newJSONRequest(`{"x":1}`, "application/vnd.api+json"), testLimit)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent())
	})

	t.Run("no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/data", nil)
		req.Header.Set("Content-Type", "application/json")

		v, err := FromRequest(req, testLimit)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent())
	})

	t.Run("declared empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/data", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Length", "0")

		v, err := FromRequest(req, testLimit)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := FromRequest(newJSONRequest(`{"x":`, "application/json"), testLimit)
		requireBodyErrorCode(t, err, errs.CodeMalformedBody)
	})

	t.Run("unsupported charset", func(t *testing.T) {
		_, err := FromRequest(newJSONRequest(`{"x":1}`, "application/json; charset=latin1"), testLimit)
		requireBodyErrorCode(t, err, errs.CodeUnsupportedCharset)
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"x":"` + strings.Repeat("a", 64) + `"}`
		_, err := FromRequest(newJSONRequest(body, "application/json"), 32)
		requireBodyErrorCode(t, err, errs.CodeBodyTooLarge)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		req := newJSONRequest(`{"x":1}`, "application/json")
		req.Header.Set("Content-Encoding", "br")

		_, err := FromRequest(req, testLimit)
		requireBodyErrorCode(t, err, errs.CodeUnsupportedEncoding)
	})
}

func TestFromRequest_ContentEncodings(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(`{"zipped":true}`))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	_, err = zw.Write([]byte(`{"deflated":true}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	tests := []struct {
		encoding string
		body     []byte
		want     string
	}{
		{encoding: "gzip", body: gz.Bytes(), want: `{"zipped":true}`},
		{encoding: "deflate", body: zl.Bytes(), want: `{"deflated":true}`},
		{encoding: "identity", body: []byte(`{"plain":true}`), want: `{"plain":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/data", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Content-Encoding", tt.encoding)

			v, err := FromRequest(req, testLimit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mustMarshal(t, v))
		})
	}
}
