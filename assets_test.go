// Copyright 2024 Harald Albrecht.
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
	"io/fs"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("embedded assets", func() {

	fsys := fstest.MapFS{
		"assets/css/shenandoah.sass": {Data: []byte(".a\n  color: red\n")},
		"assets/README":              {Data: []byte("not a directory")},
	}

	It("roots the assets at their directory", func() {
		sub := mustSub(fsys, "assets")
		Expect(Successful(fs.ReadFile(sub, "css/shenandoah.sass"))).To(Equal([]byte(".a\n  color: red\n")))
	})

	It("panics on missing directories", func() {
		Expect(func() { mustSub(fsys, "static") }).To(PanicWith(ContainSubstring(`"static"`)))
		Expect(func() { mustSub(fsys, "assets/README") }).To(Panic())
	})

	It("embeds the browser runner and stylesheet", func() {
		Expect(fs.Stat(Assets, "javascript/common/shenandoah.js")).Error().NotTo(HaveOccurred())
		Expect(fs.Stat(Assets, "css/shenandoah.sass")).Error().NotTo(HaveOccurred())
	})

})
