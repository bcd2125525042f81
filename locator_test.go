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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("locating role files", func() {

	var tmpdir string
	var loc *DefaultLocator

	BeforeEach(func() {
		tmpdir = GinkgoT().TempDir()
		loc = &DefaultLocator{
			MainPath: filepath.Join(tmpdir, "lib"),
			SpecPath: filepath.Join(tmpdir, "spec"),
		}
		tmpfile(tmpdir, "lib/good.js", "var any = function () { };\n")
		tmpfile(tmpdir, "lib/some/thing.js", "")
		tmpfile(tmpdir, "spec/common_spec.js", "DC")
	})

	It("titles roles", func() {
		Expect(RoleMain.Title()).To(Equal("Main"))
		Expect(RoleSpec.Title()).To(Equal("Spec"))
		Expect(Role("").Title()).To(BeEmpty())
	})

	It("returns role roots", func() {
		Expect(loc.Root(RoleMain)).To(Equal(loc.MainPath))
		Expect(loc.Root(RoleSpec)).To(Equal(loc.SpecPath))
		Expect(loc.Root(Role("foo"))).To(BeEmpty())
	})

	DescribeTable("locates existing files",
		func(role Role, name string, expected string) {
			Expect(loc.Locate(role, name)).To(Equal(filepath.Join(tmpdir, expected)))
		},
		Entry("main file", RoleMain, "good.js", "lib/good.js"),
		Entry("main file without extension", RoleMain, "good", "lib/good.js"),
		Entry("main file in subdirectory", RoleMain, "some/thing.js", "lib/some/thing.js"),
		Entry("spec file", RoleSpec, "common_spec.js", "spec/common_spec.js"),
		Entry("rooted name", RoleSpec, "/common_spec.js", "spec/common_spec.js"),
		Entry("name trying to escape", RoleMain, "../lib/good.js", "lib/good.js"),
	)

	DescribeTable("reports missing files",
		func(role Role, name string, expected string) {
			Expect(os.MkdirAll(filepath.Join(tmpdir, "lib", "folder.js"), 0o755)).To(Succeed())
			_, err := loc.Locate(role, name)
			Expect(err).To(MatchError(fs.ErrNotExist))
			Expect(err).To(MatchError(fmt.Sprintf("%s file not found: %s",
				role.Title(), filepath.Join(tmpdir, expected))))
		},
		Entry("missing main file", RoleMain, "bad.js", "lib/bad.js"),
		Entry("missing spec file", RoleSpec, "bad.js", "spec/bad.js"),
		Entry("missing file without extension", RoleSpec, "bad", "spec/bad.js"),
		Entry("directory", RoleMain, "folder.js", "lib/folder.js"),
	)

	It("rejects unknown roles", func() {
		_, err := loc.Locate(Role("foo"), "good.js")
		Expect(err).To(MatchError(ContainSubstring("unknown role")))
	})

})
