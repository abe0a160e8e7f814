package store

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"bookshelf/internal/book"
)

// Codec converts the whole book collection to and from its file representation.
type Codec interface {
	Encode(books []book.Book) ([]byte, error)
	Decode(data []byte) ([]book.Book, error)
}

// CodecFor picks a codec from the file extension: ".json" selects JSON,
// anything else XML.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONCodec{}
	}
	return XMLCodec{}
}

type xmlShelf struct {
	XMLName xml.Name    `xml:"books"`
	Books   []book.Book `xml:"book"`
}

// XMLCodec stores books as <books><book>...</book></books>.
type XMLCodec struct{}

func (XMLCodec) Encode(books []book.Book) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlShelf{Books: books}); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// xmlShelfIn and xmlRecordIn mirror the written layout but also capture
// anything encoding/xml would otherwise skip, so foreign documents fail to
// load instead of decoding to an empty shelf.
type xmlShelfIn struct {
	XMLName xml.Name      `xml:"books"`
	Books   []xmlRecordIn `xml:"book"`
	Unknown []xmlUnknown  `xml:",any"`
	Text    string        `xml:",chardata"`
}

type xmlRecordIn struct {
	Author  *string      `xml:"author"`
	Title   *string      `xml:"title"`
	Pages   int          `xml:"pages"`
	Unknown []xmlUnknown `xml:",any"`
	Text    string       `xml:",chardata"`
}

type xmlUnknown struct {
	XMLName xml.Name
}

func (XMLCodec) Decode(data []byte) ([]book.Book, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var shelf xmlShelfIn
	if err := dec.Decode(&shelf); err != nil {
		return nil, err
	}
	if len(shelf.Unknown) > 0 {
		return nil, fmt.Errorf("unexpected element <%s> in <books>", shelf.Unknown[0].XMLName.Local)
	}
	if strings.TrimSpace(shelf.Text) != "" {
		return nil, errors.New("unexpected text in <books>")
	}
	// Decode stops after the root element; the rest of the document may only
	// hold whitespace, comments and processing instructions.
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, errors.New("unexpected text after root element")
			}
		default:
			return nil, fmt.Errorf("unexpected %T after root element", tok)
		}
	}

	books := make([]book.Book, 0, len(shelf.Books))
	for i, rec := range shelf.Books {
		switch {
		case len(rec.Unknown) > 0:
			return nil, fmt.Errorf("record %d: unexpected element <%s>", i+1, rec.Unknown[0].XMLName.Local)
		case strings.TrimSpace(rec.Text) != "":
			return nil, fmt.Errorf("record %d: unexpected text", i+1)
		case rec.Author == nil:
			return nil, fmt.Errorf("record %d: missing <author>", i+1)
		case rec.Title == nil:
			return nil, fmt.Errorf("record %d: missing <title>", i+1)
		}
		books = append(books, book.Book{Author: *rec.Author, Title: *rec.Title, Pages: rec.Pages})
	}
	return books, nil
}

// JSONCodec stores books as a single JSON array.
type JSONCodec struct{}

func (JSONCodec) Encode(books []book.Book) ([]byte, error) {
	if books == nil {
		books = []book.Book{}
	}
	b, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (JSONCodec) Decode(data []byte) ([]book.Book, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var books []book.Book
	if err := dec.Decode(&books); err != nil {
		return nil, err
	}
	if books == nil {
		return nil, errors.New("expected a JSON array")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after array")
	}
	return books, nil
}
