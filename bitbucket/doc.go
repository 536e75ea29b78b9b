// Package bitbucket provides a client for the Bitbucket Data Center
// (Server/DC) pull-request REST API.
//
// The client authenticates with a bearer token (PAT) and talks to the
// versioned REST endpoints under <server>/rest/api/latest. Paged
// collections (values/isLastPage/nextPageStart) are consumed through
// PagedGet, which follows the start cursor sequentially and caps the
// result at a caller-supplied maximum.
package bitbucket
