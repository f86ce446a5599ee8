package parse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/domain/markup"
	"djnml-feed/internal/observability/logging"
)

const (
	pathDoc       = "/doc"
	pathDJNML     = "/doc/djnml"
	pathNewswires = "/doc/djnml/head/docdata/djn/djn-newswires"
	pathUrgency   = pathNewswires + "/djn-urgency"
	pathMdata     = pathNewswires + "/djn-mdata"
	pathHeadline  = "/doc/djnml/body/headline"
	pathText      = "/doc/djnml/body/text"
	pathCopyright = "/doc/djnml/head/copyright"
	pathDeletes   = "/doc/djnml/administration/doc-delete"
	pathModifies  = "/doc/djnml/administration/doc-modify"
)

// extraction is the state of one parse.
type extraction struct {
	ctx    context.Context
	engine *Engine
	root   markup.Node
	misses []*FieldMissError
}

func (x *extraction) record(m *FieldMissError) {
	x.misses = append(x.misses, m)
	x.engine.metrics.RecordFieldMiss(m.Step)
	logger := x.engine.logger
	if logger == nil {
		logger = logging.FromContext(x.ctx)
	}
	logger.DebugContext(x.ctx, "field miss",
		slog.String("step", m.Step),
		slog.String("path", m.Path),
		slog.Any("error", m.Err))
}

// settle runs one step and applies its result. The value is assigned only
// on success. An invalid code aborts the parse; any other error is a miss.
func settle[T any](x *extraction, step string, run func() (T, error), assign func(T)) error {
	v, err := run()
	if err == nil {
		assign(v)
		return nil
	}
	if errors.Is(err, codes.ErrInvalidCode) {
		return err
	}
	var fm *FieldMissError
	if !errors.As(err, &fm) {
		fm = miss(step, "", err)
	}
	x.record(fm)
	return nil
}

func (x *extraction) document() (*entity.Document, error) {
	doc := &entity.Document{
		Coding:        entity.NewCoding(),
		Deletes:       []entity.DeleteNotice{},
		Modifications: []entity.Modification{},
	}

	steps := []func() error{
		func() error {
			return settle(x, "envelope", x.envelope, func(v entity.Envelope) { doc.Envelope = v })
		},
		func() error {
			return settle(x, "routing", x.routing, func(v entity.Routing) { doc.Routing = v })
		},
		func() error {
			return settle(x, "attribution", x.attribution, func(v entity.Attribution) { doc.Attribution = v })
		},
		func() error {
			return settle(x, "urgency", x.urgency, func(v int) { doc.Urgency = v })
		},
		func() error {
			return settle(x, "metadata", x.metadata, func(v entity.Metadata) { doc.Metadata = v })
		},
		func() error {
			return settle(x, "coding", x.coding, func(v entity.Coding) { doc.Coding = v })
		},
		func() error {
			return settle(x, "headline", x.headline, func(v headline) {
				doc.Headline = &v.text
				doc.HeadlineBrand = v.brand
			})
		},
		func() error {
			return settle(x, "body", x.body, func(v entity.TextChange) {
				doc.Text = &v.Text
				doc.HTML = &v.HTML
			})
		},
		func() error {
			return settle(x, "copyright", x.copyright, func(v entity.Copyright) { doc.Copyright = v })
		},
		func() error {
			return settle(x, "website", func() (*string, error) { return x.website(doc.Text) },
				func(v *string) { doc.Website = v })
		},
		func() error {
			return settle(x, "company", func() (*entity.CompanyBlock, error) { return x.company(doc.Text) },
				func(v *entity.CompanyBlock) { doc.Company = v })
		},
		func() error {
			return settle(x, "language", func() (*string, error) { return x.language(doc.Text) },
				func(v *string) { doc.Language = v })
		},
		func() error {
			return settle(x, "deletes", x.deletes, func(v []entity.DeleteNotice) { doc.Deletes = v })
		},
		func() error {
			return settle(x, "modifications", x.modifications, func(v []entity.Modification) { doc.Modifications = v })
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (x *extraction) node(step, path string) (markup.Node, error) {
	n := markup.First(x.root, path)
	if n == nil {
		return nil, miss(step, path, errNodeAbsent)
	}
	return n, nil
}

// timeAttr parses a timestamp attribute. A malformed value is recorded
// against step and only that field stays unset.
func (x *extraction) timeAttr(step string, n markup.Node, name string) *time.Time {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	t, err := x.engine.times.Parse(v)
	if err != nil {
		x.record(miss(step, "@"+name, err))
		return nil
	}
	return &t
}

func (x *extraction) envelope() (entity.Envelope, error) {
	n, err := x.node("envelope", pathDoc)
	if err != nil {
		return entity.Envelope{}, err
	}
	return entity.Envelope{
		Size:             intAttr(n, "msize"),
		MD5:              attr(n, "md5"),
		SysID:            attr(n, "sysId"),
		Destination:      attr(n, "destination"),
		DistID:           attr(n, "distId"),
		TransmissionDate: x.timeAttr("envelope", n, "transmission-date"),
	}, nil
}

func (x *extraction) routing() (entity.Routing, error) {
	n, err := x.node("routing", pathDJNML)
	if err != nil {
		return entity.Routing{}, err
	}
	return entity.Routing{
		Publisher: attr(n, "publisher"),
		DocDate:   x.timeAttr("routing", n, "docdate"),
		Product:   attr(n, "product"),
		Seq:       intAttr(n, "seq"),
		Lang:      attr(n, "lang"),
	}, nil
}

func (x *extraction) attribution() (entity.Attribution, error) {
	n, err := x.node("attribution", pathNewswires)
	if err != nil {
		return entity.Attribution{}, err
	}
	return entity.Attribution{
		NewsSource: attr(n, "news-source"),
		Origin:     attr(n, "origin"),
		ServiceID:  attr(n, "service-id"),
	}, nil
}

func (x *extraction) urgency() (int, error) {
	n, err := x.node("urgency", pathUrgency)
	if err != nil {
		return 0, err
	}
	return parseUrgency(n.Text()), nil
}

func (x *extraction) metadata() (entity.Metadata, error) {
	n, err := x.node("metadata", pathMdata)
	if err != nil {
		return entity.Metadata{}, err
	}
	return entity.Metadata{
		Brand:           attr(n, "brand"),
		TempPerm:        attr(n, "temp-perm"),
		Retention:       attr(n, "retention"),
		Hot:             attr(n, "hot"),
		OriginalSource:  attr(n, "original-source"),
		AccessionNumber: attr(n, "accession-number"),
		PageCitation:    attr(n, "page-citation"),
		DisplayDate:     x.timeAttr("metadata", n, "display-date"),
	}, nil
}

// coding reads the fourteen lists from the document's djn-mdata. Without a
// metadata block every list stays empty.
func (x *extraction) coding() (entity.Coding, error) {
	n := markup.First(x.root, pathMdata)
	if n == nil {
		return entity.NewCoding(), nil
	}
	return readCoding(x.engine.registry, n)
}

type headline struct {
	text  string
	brand *string
}

func (x *extraction) headline() (headline, error) {
	n, err := x.node("headline", pathHeadline)
	if err != nil {
		return headline{}, err
	}
	return headline{
		text:  strings.TrimSpace(n.Text()),
		brand: attr(n, "brand-display"),
	}, nil
}

func (x *extraction) body() (entity.TextChange, error) {
	n, err := x.node("body", pathText)
	if err != nil {
		return entity.TextChange{}, err
	}
	return textChange(n), nil
}

func (x *extraction) copyright() (entity.Copyright, error) {
	n, err := x.node("copyright", pathCopyright)
	if err != nil {
		return entity.Copyright{}, err
	}
	return entity.Copyright{
		Year:   intAttr(n, "year"),
		Holder: attr(n, "holder"),
	}, nil
}

func (x *extraction) website(text *string) (*string, error) {
	if text == nil {
		return nil, nil
	}
	return ExtractWebsite(*text), nil
}

func (x *extraction) company(text *string) (*entity.CompanyBlock, error) {
	if text == nil {
		return nil, nil
	}
	return ExtractCompany(*text), nil
}

func (x *extraction) language(text *string) (*string, error) {
	if x.engine.langs == nil || text == nil {
		return nil, nil
	}
	lang, err := x.engine.langs.Detect(*text)
	if err != nil {
		return nil, miss("language", "", err)
	}
	return &lang, nil
}

// deletes builds one notice per doc-delete element. A notice that cannot be
// read is skipped on its own.
func (x *extraction) deletes() ([]entity.DeleteNotice, error) {
	nodes := x.root.Find(pathDeletes)
	out := make([]entity.DeleteNotice, 0, len(nodes))
	for i, n := range nodes {
		notice, err := x.deleteNotice(n)
		if err != nil {
			x.record(miss("deletes", fmt.Sprintf("%s[%d]", pathDeletes, i+1), err))
			continue
		}
		out = append(out, notice)
	}
	return out, nil
}

func (x *extraction) deleteNotice(n markup.Node) (entity.DeleteNotice, error) {
	notice := entity.DeleteNotice{
		Product:   attr(n, "product"),
		Publisher: attr(n, "publisher"),
		Reason:    attr(n, "reason"),
	}
	if v, ok := n.Attr("docdate"); ok {
		t, err := x.engine.times.Parse(v)
		if err != nil {
			return entity.DeleteNotice{}, fmt.Errorf("docdate: %w", err)
		}
		notice.DocDate = &t
	}
	if v, ok := n.Attr("seq"); ok {
		seq := atoi(v)
		notice.Seq = &seq
	}
	return notice, nil
}

// modifications builds one patch per modify-replace child of every
// doc-modify section. The children share their section's header, so a
// header miss is recorded once per section and every patch is still kept.
func (x *extraction) modifications() ([]entity.Modification, error) {
	out := []entity.Modification{}
	for i, section := range x.root.Find(pathModifies) {
		header := ModifyHeader{
			Publisher: attr(section, "publisher"),
			DocDate:   attr(section, "docdate"),
			Product:   attr(section, "product"),
			Seq:       attr(section, "seq"),
		}
		reported := false
		onMiss := func(m *FieldMissError) {
			if reported {
				return
			}
			reported = true
			x.record(miss("modifications", fmt.Sprintf("%s[%d]/%s", pathModifies, i+1, m.Path), m.Err))
		}
		for _, replace := range section.Find("modify-replace") {
			mod, err := x.engine.buildModification(TreeFragment{Header: header, Node: replace}, onMiss)
			if err != nil {
				return nil, err
			}
			out = append(out, mod)
		}
	}
	return out, nil
}

func attr(n markup.Node, name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

func intAttr(n markup.Node, name string) int {
	v, ok := n.Attr(name)
	if !ok {
		return 0
	}
	return atoi(v)
}

// atoi reads a decimal integer and falls back to 0.
func atoi(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

func parseUrgency(s string) int {
	return entity.ParseUrgency(s)
}

func textChange(n markup.Node) entity.TextChange {
	return entity.TextChange{
		Text: strings.TrimSpace(n.Text()),
		HTML: n.InnerXML(),
	}
}
