// Package codec turns list state into opaque, URL-safe tokens and back.
//
// A token is the unpadded base64url text of a CBOR payload. The payload is
// encoded with Core Deterministic Encoding (RFC 8949 §4.2), so equal states
// always produce identical tokens. Structs travel as CBOR arrays whose first
// element is the format version:
//
//	[version, author, [[id, catalogId, viewed, rating], ...]]
//
// Decoding is total: anything that is not a well-formed current-version
// payload decodes to the default state, with the reason recorded in
// [Decoded].
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"musicalist/internal/model"

	"github.com/fxamacker/cbor/v2"
)

var (
	ErrAbsent  = errors.New("codec: no token")
	ErrText    = errors.New("codec: token is not base64url")
	ErrPayload = errors.New("codec: malformed payload")
	ErrVersion = errors.New("codec: unsupported format version")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

var textEncoding = base64.RawURLEncoding

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels:  8,
		MaxArrayElements: model.MaxItems,
		MaxMapPairs:      16,
		IndefLength:      cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

type wireItem struct {
	_         struct{} `cbor:",toarray"`
	ID        uint64
	CatalogID uint64
	Viewed    bool
	Rating    uint8
}

type wireList struct {
	_       struct{} `cbor:",toarray"`
	Version uint8
	Author  string
	Items   []wireItem
}

type wireUsers struct {
	_       struct{} `cbor:",toarray"`
	Version uint8
	Authors []string
}

// Decoded is the result of decoding a list token. When Fallback is true,
// State is model.DefaultListState() and Reason wraps one of the Err* values.
type Decoded struct {
	State    model.ListState
	Fallback bool
	Reason   error
}

// Encode returns the token for s. Ratings are expected to satisfy
// model.ListState.Validate; out-of-range values are clamped into a byte and
// invalid UTF-8 in the author is replaced.
func Encode(s model.ListState) model.Token {
	w := wireList{
		Version: s.FormatVersion,
		Author:  model.CleanAuthor(s.Author),
		Items:   make([]wireItem, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		w.Items = append(w.Items, wireItem{
			ID:        it.ID,
			CatalogID: it.CatalogID,
			Viewed:    it.Viewed,
			Rating:    clampByte(it.Rating),
		})
	}
	return model.Token(encodeText(mustMarshal(w)))
}

// Decode never fails; see Decoded.
func Decode(t model.Token) Decoded {
	raw, err := decodeText(t)
	if err != nil {
		return fallback(err)
	}
	if err := checkVersion(raw); err != nil {
		return fallback(err)
	}

	var w wireList
	if err := decMode.Unmarshal(raw, &w); err != nil {
		return fallback(fmt.Errorf("%w: %v", ErrPayload, err))
	}
	s := model.ListState{
		FormatVersion: w.Version,
		Author:        w.Author,
		Items:         make([]model.ListItem, 0, len(w.Items)),
	}
	for _, it := range w.Items {
		s.Items = append(s.Items, model.ListItem{
			ID:        it.ID,
			CatalogID: it.CatalogID,
			Viewed:    it.Viewed,
			Rating:    int(it.Rating),
		})
	}
	if err := s.Validate(); err != nil {
		return fallback(fmt.Errorf("%w: %v", ErrPayload, err))
	}
	return Decoded{State: s}
}

// DecodeList is Decode(t).State.
func DecodeList(t model.Token) model.ListState {
	return Decode(t).State
}

func EncodeUsers(r model.UserRegistry) model.Token {
	w := wireUsers{Version: r.FormatVersion, Authors: make([]string, 0, len(r.Authors))}
	for _, a := range r.Authors {
		w.Authors = append(w.Authors, model.CleanAuthor(a))
	}
	return model.Token(encodeText(mustMarshal(w)))
}

// DecodeUsers falls back to an empty registry on any error.
func DecodeUsers(t model.Token) model.UserRegistry {
	raw, err := decodeText(t)
	if err != nil {
		return model.DefaultUserRegistry()
	}
	if err := checkVersion(raw); err != nil {
		return model.DefaultUserRegistry()
	}
	var w wireUsers
	if err := decMode.Unmarshal(raw, &w); err != nil {
		return model.DefaultUserRegistry()
	}
	out := model.UserRegistry{FormatVersion: w.Version, Authors: make([]string, 0, len(w.Authors))}
	for _, a := range w.Authors {
		if a == "" || out.Contains(a) {
			continue
		}
		out.Authors = append(out.Authors, a)
	}
	return out
}

// Diagnose renders the payload of t in CBOR diagnostic notation.
func Diagnose(t model.Token) (string, error) {
	raw, err := decodeText(t)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(raw)
}

func fallback(reason error) Decoded {
	return Decoded{State: model.DefaultListState(), Fallback: true, Reason: reason}
}

func checkVersion(raw []byte) error {
	var head []cbor.RawMessage
	if err := decMode.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrPayload, err)
	}
	if len(head) == 0 {
		return fmt.Errorf("%w: empty array", ErrPayload)
	}
	var version uint64
	if err := decMode.Unmarshal(head[0], &version); err != nil {
		return fmt.Errorf("%w: version: %v", ErrPayload, err)
	}
	if version != uint64(model.CurrentFormatVersion) {
		return fmt.Errorf("%w: %d", ErrVersion, version)
	}
	return nil
}

func encodeText(b []byte) string {
	return textEncoding.EncodeToString(b)
}

func decodeText(t model.Token) ([]byte, error) {
	s := strings.TrimRight(strings.TrimSpace(string(t)), "=")
	if s == "" {
		return nil, ErrAbsent
	}
	b, err := textEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrText, err)
	}
	return b, nil
}

func mustMarshal(v any) []byte {
	b, err := encMode.Marshal(v)
	if err != nil {
		// Only fixed-shape wire structs reach here.
		panic("codec: marshal: " + err.Error())
	}
	return b
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
