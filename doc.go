/*
Package shenandoah serves JavaScript specs of a host project to browsers.

The Server type implements http.Handler. It serves the browser-side runner
bundled with shenandoah as a single concatenated script, the project's main
and spec files as located by a Locator, a stylesheet that projects can
override with their own CSS or Sass, an index page of all specs found, and a
multirunner page running several spec fixtures at once inside iframes.

	srv := shenandoah.NewServer(
		shenandoah.WithLocator(&shenandoah.DefaultLocator{
			MainPath: "public/javascripts",
			SpecPath: "spec/javascript",
		}),
		shenandoah.WithProjectName("Some Proj"))
	http.ListenAndServe("localhost:4410", srv)

The spec fixtures and their JavaScript spec stubs are created by package
generator.
*/
package shenandoah
