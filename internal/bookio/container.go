// Package bookio implements C1 (container I/O) and the top-level Read/Write
// entry points that assemble a book.Book from a ZIP file and vice versa
// (spec.md §4.1). ZIP handling mirrors the teacher's reader.go/writer.go:
// archive/zip directly, no third-party ZIP library.
package bookio

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"golibri-studio/internal/errs"
)

const mimetypeContent = "application/epub+zip"

// containerXML mirrors META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name        `xml:"urn:oasis:names:tc:opendocument:xmlns:container container"`
	RootFiles []rootFileEntry `xml:"rootfiles>rootfile"`
}

type rootFileEntry struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// rawContainer is the result of reading the ZIP structurally, before OPF
// or navigation parsing.
type rawContainer struct {
	OPFPath   string
	Resources map[string][]byte // every entry except mimetype and container.xml
}

// openRaw validates the mimetype entry and container.xml, then loads every
// remaining entry into memory keyed by its container-relative path.
func openRaw(path string) (*rawContainer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "bookio.openRaw", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.New(errs.KindIO, "bookio.openRaw", err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, errs.New(errs.KindZipFormat, "bookio.openRaw", err)
	}

	if len(zr.File) == 0 {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "empty archive")
	}
	first := zr.File[0]
	if first.Name != "mimetype" {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "first entry is %q, expected \"mimetype\"", first.Name)
	}
	if first.Method != zip.Store {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "mimetype entry must be stored uncompressed")
	}
	mt, err := readZipFile(first)
	if err != nil {
		return nil, errs.New(errs.KindInvalidEpub, "bookio.openRaw", err)
	}
	if string(mt) != mimetypeContent {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "mimetype payload is %q, expected %q", mt, mimetypeContent)
	}

	resources := map[string][]byte{}
	var containerData []byte
	for _, zf := range zr.File {
		if zf.Name == "mimetype" {
			continue
		}
		if zf.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(zf)
		if err != nil {
			return nil, errs.New(errs.KindZipFormat, "bookio.openRaw", fmt.Errorf("reading %s: %w", zf.Name, err))
		}
		if zf.Name == "META-INF/container.xml" {
			containerData = data
			continue
		}
		resources[zf.Name] = data
	}

	if containerData == nil {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "META-INF/container.xml missing")
	}

	var c containerXML
	if err := xml.Unmarshal(containerData, &c); err != nil {
		return nil, errs.New(errs.KindXMLParse, "bookio.openRaw", fmt.Errorf("malformed container.xml: %w", err))
	}
	if len(c.RootFiles) == 0 {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.openRaw", "<rootfile> missing from container.xml")
	}

	opfPath := c.RootFiles[0].FullPath
	for _, rf := range c.RootFiles {
		if rf.MediaType == "application/oebps-package+xml" {
			opfPath = rf.FullPath
			break
		}
	}

	return &rawContainer{OPFPath: opfPath, Resources: resources}, nil
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// zipWriter is a tiny helper wrapping archive/zip.Writer with the
// mimetype-first, stored-uncompressed discipline the format requires.
type zipWriter struct {
	w *zip.Writer
}

func newZipWriter(w io.Writer) *zipWriter {
	return &zipWriter{w: zip.NewWriter(w)}
}

func (z *zipWriter) writeMimetype() error {
	hdr := &zip.FileHeader{Name: "mimetype", Method: zip.Store}
	fw, err := z.w.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = fw.Write([]byte(mimetypeContent))
	return err
}

func (z *zipWriter) writeFile(name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	fw, err := z.w.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func (z *zipWriter) close() error {
	return z.w.Close()
}

func buildContainerXML(opfPath string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + opfPath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`)
}
