// Package components holds the templ building blocks of the e-mails: a Layout
// card with Header, Body, Title, Text, TextSecondary, OTP and Footer pieces.
// Styles are inline so clients that strip <style> still render them.
package components
