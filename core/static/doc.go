// Package static serves the gateway's frontend bundles and shared assets from
// an fs.FS (a directory on disk or an embedded tree).
//
// A Bundle is one single-page application. Files that exist are served with
// http.ServeContent semantics (ranges, If-Modified-Since); any other path falls
// back to the bundle's index.html so client-side routing works:
//
//	console, err := static.OpenBundle("console", "./dist/console")
//	r.Get("/console/{path...}", func(c *gateway.Context) handler.Response {
//		return console.Serve(c.Param("path"))
//	})
//
// Assets serves files without fallback and with a long-lived immutable
// cache policy, for content-hashed resources shared across bundles.
package static
