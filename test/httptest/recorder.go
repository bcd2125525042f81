// Copyright 2023, 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test doing superfluous response.WriteHeader calls. Additionally, it
eases checking the Last-Modified header and HTML bodies of responses.
*/
package httptest

import (
	"net/http"
	stdhttptest "net/http/httptest"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// WrappedResponseRecorder wraps httptest.ResponseRecorder in order to fail
// tests doing superfluous WriteHeader calls.
type WrappedResponseRecorder struct {
	*stdhttptest.ResponseRecorder
	wroteHeader bool
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *WrappedResponseRecorder {
	return &WrappedResponseRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// WriteHeader calls.
func (w *WrappedResponseRecorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeFalse(), "superfluous response.WriteHeader call")
	w.wroteHeader = true
	w.ResponseRecorder.WriteHeader(code)
}

// Get serves a GET request for target using handler and returns the recorded
// response.
func Get(handler http.Handler, target string) *WrappedResponseRecorder {
	w := NewRecorder()
	handler.ServeHTTP(w, stdhttptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// LastModified returns the time from the recorded Last-Modified header,
// failing the test if the header is missing or malformed.
func (w *WrappedResponseRecorder) LastModified() time.Time {
	GinkgoHelper()
	header := w.Header().Get("Last-Modified")
	Expect(header).NotTo(BeEmpty(), "missing Last-Modified header")
	t, err := http.ParseTime(header)
	Expect(err).NotTo(HaveOccurred())
	return t
}

// Document parses the recorded body as an HTML document.
func (w *WrappedResponseRecorder) Document() *goquery.Document {
	GinkgoHelper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	Expect(err).NotTo(HaveOccurred())
	return doc
}
