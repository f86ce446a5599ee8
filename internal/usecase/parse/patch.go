package parse

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/domain/markup"
)

// PatchSource is the input of BuildModification: a TreeFragment cut from a
// doc-modify section, or a PatchRecord decoded from storage or a queue.
type PatchSource interface {
	patchSource()
}

// ModifyHeader holds the raw attributes of a doc-modify section.
type ModifyHeader struct {
	Publisher *string
	DocDate   *string
	Product   *string
	Seq       *string
}

// TreeFragment is one modify-replace element plus its section header.
type TreeFragment struct {
	Header ModifyHeader
	Node   markup.Node
}

// PatchRecord is the structured form of a patch.
type PatchRecord struct {
	Publisher   *string       `json:"publisher,omitempty"`
	DocDate     *string       `json:"doc_date,omitempty"`
	Product     *string       `json:"product,omitempty"`
	Seq         *int          `json:"seq,omitempty"`
	Path        *string       `json:"xpath,omitempty"`
	Metadata    *CodingRecord `json:"mdata,omitempty"`
	Headline    *string       `json:"headline,omitempty"`
	Text        *TextRecord   `json:"text,omitempty"`
	Summary     *TextRecord   `json:"summary,omitempty"`
	PressCutout *string       `json:"press_cutout,omitempty"`
	Urgency     *string       `json:"urgency,omitempty"`
}

// TextRecord is the structured form of a text change.
type TextRecord struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// CodeRecord references a vocabulary entry by symbol.
type CodeRecord struct {
	Symbol string `json:"symbol"`
}

// CodingRecord is the structured form of patch metadata.
type CodingRecord struct {
	Company    []string     `json:"company_code,omitempty"`
	ISIN       []string     `json:"isin_code,omitempty"`
	Page       []string     `json:"page_code,omitempty"`
	Industry   []CodeRecord `json:"industry_code,omitempty"`
	Government []CodeRecord `json:"government_code,omitempty"`
	Subject    []CodeRecord `json:"subject_code,omitempty"`
	Market     []CodeRecord `json:"market_code,omitempty"`
	Product    []CodeRecord `json:"product_code,omitempty"`
	Geo        []CodeRecord `json:"geo_code,omitempty"`
	Stat       []CodeRecord `json:"stat_code,omitempty"`
	Journal    []CodeRecord `json:"journal_code,omitempty"`
	Routing    []CodeRecord `json:"routing_code,omitempty"`
	Content    []CodeRecord `json:"content_code,omitempty"`
	Function   []CodeRecord `json:"function_code,omitempty"`
}

func (TreeFragment) patchSource() {}
func (PatchRecord) patchSource()  {}

func (r *CodingRecord) symbols(a axis) []string {
	var refs []CodeRecord
	switch a.name {
	case "company":
		return r.Company
	case "isin":
		return r.ISIN
	case "page":
		return r.Page
	case "industry":
		refs = r.Industry
	case "government":
		refs = r.Government
	case "subject":
		refs = r.Subject
	case "market":
		refs = r.Market
	case "product":
		refs = r.Product
	case "geo":
		refs = r.Geo
	case "stat":
		refs = r.Stat
	case "journal":
		refs = r.Journal
	case "routing":
		refs = r.Routing
	case "content":
		refs = r.Content
	case "function":
		refs = r.Function
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Symbol)
	}
	return out
}

// BuildModification converts either patch form into a Modification. Both
// forms give identical results for equivalent input. An unknown coding
// symbol yields codes.ErrInvalidCode. A header docdate that cannot be read
// is logged as a field miss and leaves DocDate nil.
func (e *Engine) BuildModification(src PatchSource) (entity.Modification, error) {
	return e.buildModification(src, e.recordMiss)
}

func (e *Engine) buildModification(src PatchSource, onMiss func(*FieldMissError)) (entity.Modification, error) {
	switch s := src.(type) {
	case TreeFragment:
		return e.fromTree(s, onMiss)
	case *TreeFragment:
		return e.fromTree(*s, onMiss)
	case PatchRecord:
		return e.fromRecord(s, onMiss)
	case *PatchRecord:
		return e.fromRecord(*s, onMiss)
	default:
		return entity.Modification{}, fmt.Errorf("unsupported patch source %T", src)
	}
}

// recordMiss reports a miss raised outside of a parse.
func (e *Engine) recordMiss(m *FieldMissError) {
	e.metrics.RecordFieldMiss(m.Step)
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("field miss",
		slog.String("step", m.Step),
		slog.String("path", m.Path),
		slog.Any("error", m.Err))
}

func (e *Engine) header(publisher, docDate, product *string, seq *int, onMiss func(*FieldMissError)) entity.Modification {
	mod := entity.Modification{
		Publisher: publisher,
		Product:   product,
		Seq:       seq,
	}
	if docDate != nil {
		t, err := e.times.Parse(*docDate)
		if err != nil {
			onMiss(miss("modification", "@docdate", err))
		} else {
			mod.DocDate = &t
		}
	}
	return mod
}

func (e *Engine) fromTree(f TreeFragment, onMiss func(*FieldMissError)) (entity.Modification, error) {
	var seq *int
	if f.Header.Seq != nil {
		v := atoi(*f.Header.Seq)
		seq = &v
	}
	mod := e.header(f.Header.Publisher, f.Header.DocDate, f.Header.Product, seq, onMiss)
	if f.Node == nil {
		return mod, nil
	}

	mod.Path = attr(f.Node, "xpath")

	if n := markup.First(f.Node, ".//djn-mdata"); n != nil {
		c, err := readCoding(e.registry, n)
		if err != nil {
			return entity.Modification{}, err
		}
		mod.Metadata = &c
	}
	if n := markup.First(f.Node, ".//headline"); n != nil {
		s := strings.TrimSpace(n.Text())
		mod.Headline = &s
	}
	if n := markup.First(f.Node, ".//text"); n != nil {
		tc := textChange(n)
		mod.Text = &tc
	}
	if n := markup.First(f.Node, ".//summary"); n != nil {
		tc := textChange(n)
		mod.Summary = &tc
	}
	if n := markup.First(f.Node, ".//djn-press-cutout"); n != nil {
		s := strings.TrimSpace(n.Text())
		mod.PressCutout = &s
	}
	if n := markup.First(f.Node, ".//djn-urgency"); n != nil {
		s := strings.TrimSpace(n.Text())
		mod.Urgency = &s
	}
	return mod, nil
}

func (e *Engine) fromRecord(r PatchRecord, onMiss func(*FieldMissError)) (entity.Modification, error) {
	mod := e.header(r.Publisher, r.DocDate, r.Product, r.Seq, onMiss)

	mod.Path = r.Path
	if r.Metadata != nil {
		c, err := buildCoding(e.registry, r.Metadata.symbols)
		if err != nil {
			return entity.Modification{}, err
		}
		mod.Metadata = &c
	}
	mod.Headline = r.Headline
	if r.Text != nil {
		mod.Text = &entity.TextChange{Text: r.Text.Text, HTML: r.Text.HTML}
	}
	if r.Summary != nil {
		mod.Summary = &entity.TextChange{Text: r.Summary.Text, HTML: r.Summary.HTML}
	}
	mod.PressCutout = r.PressCutout
	mod.Urgency = r.Urgency
	return mod, nil
}

// RecordOf converts a Modification back into its structured form.
func RecordOf(m entity.Modification) PatchRecord {
	r := PatchRecord{
		Publisher:   m.Publisher,
		Product:     m.Product,
		Seq:         m.Seq,
		Path:        m.Path,
		Headline:    m.Headline,
		PressCutout: m.PressCutout,
		Urgency:     m.Urgency,
	}
	r.DocDate = formatTime(m.DocDate)
	if m.Text != nil {
		r.Text = &TextRecord{Text: m.Text.Text, HTML: m.Text.HTML}
	}
	if m.Summary != nil {
		r.Summary = &TextRecord{Text: m.Summary.Text, HTML: m.Summary.HTML}
	}
	if m.Metadata != nil {
		r.Metadata = codingRecordOf(*m.Metadata)
	}
	return r
}

func codingRecordOf(c entity.Coding) *CodingRecord {
	return &CodingRecord{
		Company:    c.CompanyCodes,
		ISIN:       c.ISINCodes,
		Page:       c.PageCodes,
		Industry:   toRefs(c.IndustryCodes),
		Government: toRefs(c.GovernmentCodes),
		Subject:    toRefs(c.SubjectCodes),
		Market:     toRefs(c.MarketCodes),
		Product:    toRefs(c.ProductCodes),
		Geo:        toRefs(c.GeoCodes),
		Stat:       toRefs(c.StatCodes),
		Journal:    toRefs(c.JournalCodes),
		Routing:    toRefs(c.RoutingCodes),
		Content:    toRefs(c.ContentCodes),
		Function:   toRefs(c.FunctionCodes),
	}
}

func toRefs(list []codes.Code) []CodeRecord {
	if len(list) == 0 {
		return nil
	}
	out := make([]CodeRecord, 0, len(list))
	for _, c := range list {
		out = append(out, CodeRecord{Symbol: c.Symbol()})
	}
	return out
}

// recordTimeLayout keeps seconds and reads back through timeparse unchanged.
const recordTimeLayout = "20060102T150405Z"

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(recordTimeLayout)
	return &s
}
