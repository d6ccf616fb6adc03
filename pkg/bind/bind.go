// Package bind decodes an HTTP request body into a struct, accepting
// either JSON or a urlencoded form so the same handler serves scripts and
// plain HTML forms.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/yuimaru-ship/storefront/config"
)

// maxBodyBytes returns the configured request body size limit (default 1 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// Request decodes r into dest, a pointer to a struct. JSON bodies are
// decoded as usual; form bodies fill string fields by their json tag.
func Request(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return JSON(r, dest)
	}
	return Form(r, dest)
}

// JSON decodes r.Body as JSON into dest.
func JSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// Form parses the form and copies values into the string fields of dest.
func Form(r *http.Request, dest interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("bind: dest must be a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() != reflect.String {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			name = f.Name
		}
		if vals, ok := r.Form[name]; ok && len(vals) > 0 {
			v.Field(i).SetString(vals[0])
		}
	}
	return nil
}
