package metadata

import (
	"net/url"
	"strconv"
	"strings"

	"nestquest/internal/domain"
)

// IdentifierFromName returns the number after the last '#' in an on-chain name.
// A name without '#' is parsed whole.
func IdentifierFromName(name string) (uint64, error) {
	tail := name[strings.LastIndex(name, "#")+1:]
	tail = strings.TrimRight(tail, "\x00 ")
	id, err := strconv.ParseUint(tail, 10, 64)
	if err != nil {
		return 0, domain.Wrap(domain.KindIdentifierMismatch, err, "name suffix")
	}
	return id, nil
}

// IdentifierFromURI returns the number before the first '.' of the URI's last path segment.
func IdentifierFromURI(uri string) (uint64, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, domain.Wrap(domain.KindIdentifierMismatch, err, "parse uri")
	}
	segment := u.Path[strings.LastIndex(u.Path, "/")+1:]
	stem, _, _ := strings.Cut(segment, ".")
	id, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return 0, domain.Wrap(domain.KindIdentifierMismatch, err, "uri file name")
	}
	return id, nil
}

// CrossCheckIdentifier requires the name and URI to carry the same identifier.
func CrossCheckIdentifier(name, uri string) (uint64, error) {
	fromName, err := IdentifierFromName(name)
	if err != nil {
		return 0, err
	}
	fromURI, err := IdentifierFromURI(uri)
	if err != nil {
		return 0, err
	}
	if fromName != fromURI {
		return 0, domain.Errorf(domain.KindIdentifierMismatch, "name says %d, uri says %d", fromName, fromURI)
	}
	return fromName, nil
}
