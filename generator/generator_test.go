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

package generator

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("generating specs", func() {

	var root string
	var out *bytes.Buffer

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	mkdir := func(dir string) {
		Expect(os.MkdirAll(filepath.Join(root, dir), 0o755)).To(Succeed())
	}

	read := func(filename string) string {
		return string(Successful(os.ReadFile(filename)))
	}

	DescribeTable("derives base and class names",
		func(name, expectedBase, expectedClass string) {
			base, class := Names(name)
			Expect(base).To(Equal(expectedBase))
			Expect(class).To(Equal(expectedClass))
		},
		Entry("plain", "common", "common", "Common"),
		Entry("spec suffix", "some_spec", "some", "Some"),
		Entry("spec.js suffix", "some_spec.js", "some", "Some"),
		Entry("underscores", "fancy_thing", "fancy_thing", "FancyThing"),
		Entry("directory", "models/hat", "models/hat", "models.Hat"),
		Entry("directory and suffix", "models/helicopter_spec", "models/helicopter", "models.Helicopter"),
		Entry("nested directories", "themes/light/alison", "themes/light/alison", "themes.light.Alison"),
		Entry("escaping", "../../etc/passwd", "etc/passwd", "etc.Passwd"),
		Entry("nothing", "", "", ""),
		Entry("only suffix", "_spec", "", ""),
		Entry("directory and only suffix", "models/_spec", "", ""),
		Entry("directory and only suffix with extension", "models/_spec.js", "", ""),
		Entry("only underscores", "models/__", "", ""),
	)

	DescribeTable("puts the files into the spec directory",
		func(specDir string) {
			mkdir(specDir)
			res := Successful(Generate(Options{Root: root, Name: "common", Out: out}))
			Expect(res.SpecDir).To(Equal(filepath.Join(root, specDir)))
			Expect(res.HTMLPath).To(Equal(filepath.Join(root, specDir, "javascript", "common.html")))
			Expect(res.JSPath).To(Equal(filepath.Join(root, specDir, "javascript", "common_spec.js")))
			Expect(res.HTMLPath).To(BeARegularFile())
			Expect(res.JSPath).To(BeARegularFile())
		},
		Entry("spec", "spec"),
		Entry("test", "test"),
		Entry("examples", "examples"),
	)

	It("generates the HTML fixture", func() {
		mkdir("spec")
		res := Successful(Generate(Options{Root: root, Name: "models/hat", Out: out}))
		html := read(res.HTMLPath)
		Expect(html).To(ContainSubstring("<title>models/hat.js | JavaScript Testing Results</title>"))
		Expect(html).To(ContainSubstring(`<link rel="stylesheet" type="text/css" href="/screw.css">`))
		Expect(html).To(ContainSubstring(`<script type="text/javascript" src="/shenandoah/browser-runner.js"></script>`))
	})

	It("generates the spec stub", func() {
		mkdir("test")
		res := Successful(Generate(Options{Root: root, Name: "models/helicopter_spec", Out: out}))
		js := read(res.JSPath)
		Expect(res.JSPath).To(Equal(filepath.Join(root, "test", "javascript", "models", "helicopter_spec.js")))
		Expect(js).To(HavePrefix("require_spec('spec_helper.js');\nrequire_main('models/helicopter.js');\n"))
		Expect(js).To(ContainSubstring("describe('models.Helicopter', function () {"))
	})

	It("reports what it creates", func() {
		mkdir("spec")
		Expect(Generate(Options{Root: root, Name: "models/hat", Out: out})).Error().NotTo(HaveOccurred())
		Expect(out.String()).To(MatchRegexp(`exists  spec\n`))
		Expect(out.String()).To(MatchRegexp(`create  spec/javascript\n`))
		Expect(out.String()).To(MatchRegexp(`create  spec/javascript/models\n`))
		Expect(out.String()).To(MatchRegexp(`create  spec/javascript/models/hat\.html\n`))
		Expect(out.String()).To(MatchRegexp(`create  spec/javascript/models/hat_spec\.js\n`))
	})

	It("keeps quiet when asked to", func() {
		mkdir("spec")
		Expect(Generate(Options{Root: root, Name: "common", Out: out, Quiet: true})).Error().NotTo(HaveOccurred())
		Expect(out.Len()).To(BeZero())
	})

	It("leaves identical files alone", func() {
		mkdir("spec")
		Expect(Generate(Options{Root: root, Name: "common", Out: out})).Error().NotTo(HaveOccurred())
		out.Reset()
		Expect(Generate(Options{Root: root, Name: "common", Out: out})).Error().NotTo(HaveOccurred())
		Expect(out.String()).To(MatchRegexp(`identical  spec/javascript/common\.html\n`))
	})

	It("keeps modified files unless forced", func() {
		mkdir("spec/javascript")
		filename := filepath.Join(root, "spec", "javascript", "common_spec.js")
		Expect(os.WriteFile(filename, []byte("// mine"), 0o644)).To(Succeed())

		Expect(Generate(Options{Root: root, Name: "common", Out: out})).Error().NotTo(HaveOccurred())
		Expect(read(filename)).To(Equal("// mine"))
		Expect(out.String()).To(MatchRegexp(`skip  spec/javascript/common_spec\.js\n`))

		out.Reset()
		Expect(Generate(Options{Root: root, Name: "common", Out: out, Force: true})).Error().NotTo(HaveOccurred())
		Expect(read(filename)).To(ContainSubstring("describe('Common'"))
		Expect(out.String()).To(MatchRegexp(`force  spec/javascript/common_spec\.js\n`))
	})

	It("fails without a spec directory", func() {
		_, err := Generate(Options{Root: root, Name: "common", Out: out})
		Expect(err).To(MatchError(ErrNoSpecDir))
		Expect(filepath.Join(root, "spec")).NotTo(BeADirectory())
	})

	DescribeTable("rejects names without a final element",
		func(name string) {
			mkdir("spec")
			_, err := Generate(Options{Root: root, Name: name, Out: out})
			Expect(err).To(MatchError(ErrInvalidName))
			Expect(filepath.Join(root, "spec", "javascript")).NotTo(BeADirectory())
		},
		Entry("nothing", ""),
		Entry("only suffix", "_spec.js"),
		Entry("directory and only suffix", "models/_spec"),
		Entry("directory and only suffix with extension", "models/_spec.js"),
	)

})
