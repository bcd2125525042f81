// Copyright 2022, 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package shenandoah

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/thediveo/shenandoah/test/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("normalize errors into HTTP status codes", func() {

	DescribeTable("normalize errors",
		func(err error, expected int, expectedBody string) {
			w := httptest.NewRecorder()
			NormalizedHttpError(w, err)
			Expect(w.Result().StatusCode).To(Equal(expected))
			Expect(w.Body.String()).To(Equal(expectedBody))
		},
		Entry("something's missing", fmt.Errorf("foobar mistake %w", fs.ErrNotExist),
			http.StatusNotFound, "404 page not found\n"),
		Entry("a role file is missing", fmt.Errorf("wrapped: %w", &NotFoundError{Role: RoleMain, Path: "/foo/bar.js"}),
			http.StatusNotFound, "Main file not found: /foo/bar.js"),
		Entry("something's out of reach", fmt.Errorf("finger wech! %w", fs.ErrPermission),
			http.StatusForbidden, "403 Forbidden\n"),
		Entry("else it's a server error", errors.New("foobar"),
			http.StatusInternalServerError, "500 Internal Server Error\n"),
	)

})
