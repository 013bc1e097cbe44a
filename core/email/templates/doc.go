// Package templates holds the e-mail bodies. Each HTML body is a templ
// component written in a .templ file and composed from the components
// package; the matching _templ.go file is produced by `templ generate` and
// committed. Render turns a component into a string for an
// email.EmailSender, and each component has a plain-text twin.
package templates
