package payload

import (
	"compress/gzip"
	"compress/zlib"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/deppfellow/data-api/internal/errs"
	"github.com/labstack/echo/v4"
)

// DefaultLimit is the body size limit used when none is configured.
const DefaultLimit int64 = 100 * 1024

// HasBody reports whether r declares a body: a Content-Length header (even
// "0") or a transfer encoding.
func HasBody(r *http.Request) bool {
	return len(r.TransferEncoding) > 0 || r.Header.Get(echo.HeaderContentLength) != "" || r.ContentLength > 0
}

// IsJSON reports whether r's media type is exactly application/json.
// Unparseable content types are not JSON.
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	return err == nil && mediaType == echo.MIMEApplicationJSON
}

// FromRequest decodes the JSON body of r.
//
// Requests without a body or with a non-JSON content type yield Absent and
// leave the body unread. Otherwise the body, after content decoding, may be
// at most limit bytes. It is then decoded from its charset (UTF-8, UTF-16
// or UTF-32) and must pass Parse.
func FromRequest(r *http.Request, limit int64) (Value, error) {
	if !HasBody(r) || !IsJSON(r) {
		return Absent(), nil
	}

	_, params, _ := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	charset, err := charsetFor(params["charset"])
	if err != nil {
		return Value{}, err
	}

	body, identity, err := contentReader(r)
	if err != nil {
		return Value{}, err
	}
	defer body.Close()

	// The declared length only bounds the decoded size for identity bodies.
	if identity && r.ContentLength > limit {
		return Value{}, errs.BodyErrorf(errs.CodeBodyTooLarge, "content length %d exceeds limit %d", r.ContentLength, limit)
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return Value{}, errs.NewBodyError(errs.CodeMalformedBody, err)
	}
	if int64(len(data)) > limit {
		return Value{}, errs.BodyErrorf(errs.CodeBodyTooLarge, "body exceeds limit %d", limit)
	}

	if data, err = toUTF8(charset, data); err != nil {
		return Value{}, err
	}
	return Parse(data)
}

// contentReader undoes the request's Content-Encoding. identity is true
// when the body is read as sent.
func contentReader(r *http.Request) (rc io.ReadCloser, identity bool, err error) {
	encoding := strings.ToLower(strings.TrimSpace(r.Header.Get(echo.HeaderContentEncoding)))

	switch encoding {
	case "", "identity":
		return r.Body, true, nil
	case "gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, false, errs.NewBodyError(errs.CodeMalformedBody, err)
		}
		return zr, false, nil
	case "deflate":
		zr, err := zlib.NewReader(r.Body)
		if err != nil {
			return nil, false, errs.NewBodyError(errs.CodeMalformedBody, err)
		}
		return zr, false, nil
	}

	return nil, false, errs.BodyErrorf(errs.CodeUnsupportedEncoding, "unsupported content encoding %q", encoding)
}
