package parse

import (
	"context"
	"errors"
	"time"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
)

// DocumentRecord is the structured form of a Document, as printed by the
// CLI and accepted by BuildDocument. Keys follow the feed's attribute names.
type DocumentRecord struct {
	Size             int     `json:"msize"`
	MD5              *string `json:"md5,omitempty"`
	SysID            *string `json:"sys_id,omitempty"`
	Destination      *string `json:"destination,omitempty"`
	DistID           *string `json:"dist_id,omitempty"`
	TransmissionDate *string `json:"transmission_date,omitempty"`

	Publisher *string `json:"publisher,omitempty"`
	DocDate   *string `json:"doc_date,omitempty"`
	Product   *string `json:"product,omitempty"`
	Seq       int     `json:"seq"`
	Lang      *string `json:"lang,omitempty"`

	NewsSource *string `json:"news_source,omitempty"`
	Origin     *string `json:"origin,omitempty"`
	ServiceID  *string `json:"service_id,omitempty"`

	Urgency int `json:"urgency"`

	Brand           *string `json:"brand,omitempty"`
	TempPerm        *string `json:"temp_perm,omitempty"`
	Retention       *string `json:"retention,omitempty"`
	Hot             *string `json:"hot,omitempty"`
	OriginalSource  *string `json:"original_source,omitempty"`
	AccessionNumber *string `json:"accession_number,omitempty"`
	PageCitation    *string `json:"page_citation,omitempty"`
	DisplayDate     *string `json:"display_date,omitempty"`

	CodingRecord

	Headline      *string `json:"headline,omitempty"`
	HeadlineBrand *string `json:"headline_brand,omitempty"`
	Text          *string `json:"text,omitempty"`
	HTML          *string `json:"html,omitempty"`

	CopyrightYear   int     `json:"copyright_year"`
	CopyrightHolder *string `json:"copyright_holder,omitempty"`

	Website        *string `json:"website,omitempty"`
	CompanyName    *string `json:"company_name,omitempty"`
	CompanyAddress *string `json:"company_address,omitempty"`
	CompanyZip     *string `json:"company_zip,omitempty"`
	CompanyCity    *string `json:"company_city,omitempty"`
	Language       *string `json:"language,omitempty"`

	Deletes       []DeleteRecord `json:"delete,omitempty"`
	Modifications []PatchRecord  `json:"modifications,omitempty"`
}

// DeleteRecord is the structured form of a delete notice.
type DeleteRecord struct {
	Publisher *string `json:"publisher,omitempty"`
	DocDate   *string `json:"doc_date,omitempty"`
	Product   *string `json:"product,omitempty"`
	Seq       *int    `json:"seq,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

// BuildDocument rebuilds a Document from its structured form. Coding symbols
// resolve through the engine's registry and an unknown one is fatal. A
// timestamp that cannot be read is a field miss and leaves only that field
// unset. The company block is kept only when all four parts are present.
func (e *Engine) BuildDocument(ctx context.Context, r DocumentRecord) (*Report, error) {
	x := &extraction{ctx: ctx, engine: e}

	coding, err := buildCoding(e.registry, r.CodingRecord.symbols)
	if err != nil {
		if errors.Is(err, codes.ErrInvalidCode) {
			e.metrics.RecordInvalidCode()
		}
		return nil, err
	}

	doc := &entity.Document{
		Envelope: entity.Envelope{
			Size:             r.Size,
			MD5:              r.MD5,
			SysID:            r.SysID,
			Destination:      r.Destination,
			DistID:           r.DistID,
			TransmissionDate: x.timeValue("envelope", "transmission_date", r.TransmissionDate),
		},
		Routing: entity.Routing{
			Publisher: r.Publisher,
			DocDate:   x.timeValue("routing", "doc_date", r.DocDate),
			Product:   r.Product,
			Seq:       r.Seq,
			Lang:      r.Lang,
		},
		Attribution: entity.Attribution{
			NewsSource: r.NewsSource,
			Origin:     r.Origin,
			ServiceID:  r.ServiceID,
		},
		Metadata: entity.Metadata{
			Brand:           r.Brand,
			TempPerm:        r.TempPerm,
			Retention:       r.Retention,
			Hot:             r.Hot,
			OriginalSource:  r.OriginalSource,
			AccessionNumber: r.AccessionNumber,
			PageCitation:    r.PageCitation,
			DisplayDate:     x.timeValue("metadata", "display_date", r.DisplayDate),
		},
		Copyright: entity.Copyright{
			Year:   r.CopyrightYear,
			Holder: r.CopyrightHolder,
		},
		Coding:        coding,
		Urgency:       r.Urgency,
		Headline:      r.Headline,
		HeadlineBrand: r.HeadlineBrand,
		Text:          r.Text,
		HTML:          r.HTML,
		Website:       r.Website,
		Language:      r.Language,
		Deletes:       make([]entity.DeleteNotice, 0, len(r.Deletes)),
		Modifications: make([]entity.Modification, 0, len(r.Modifications)),
	}
	if r.CompanyName != nil && r.CompanyAddress != nil && r.CompanyZip != nil && r.CompanyCity != nil {
		doc.Company = &entity.CompanyBlock{
			Name:    *r.CompanyName,
			Address: *r.CompanyAddress,
			Zip:     *r.CompanyZip,
			City:    *r.CompanyCity,
		}
	}

	for _, d := range r.Deletes {
		doc.Deletes = append(doc.Deletes, entity.DeleteNotice{
			Publisher: d.Publisher,
			DocDate:   x.timeValue("deletes", "doc_date", d.DocDate),
			Product:   d.Product,
			Seq:       d.Seq,
			Reason:    d.Reason,
		})
	}
	for _, p := range r.Modifications {
		mod, err := e.buildModification(p, x.record)
		if err != nil {
			if errors.Is(err, codes.ErrInvalidCode) {
				e.metrics.RecordInvalidCode()
			}
			return nil, err
		}
		doc.Modifications = append(doc.Modifications, mod)
	}
	return &Report{Document: doc, Misses: x.misses}, nil
}

func (x *extraction) timeValue(step, key string, v *string) *time.Time {
	if v == nil {
		return nil
	}
	t, err := x.engine.times.Parse(*v)
	if err != nil {
		x.record(miss(step, key, err))
		return nil
	}
	return &t
}

// DocumentRecordOf converts a Document into its structured form. Timestamps
// are written so that BuildDocument reads them back unchanged.
func DocumentRecordOf(doc *entity.Document) DocumentRecord {
	r := DocumentRecord{
		Size:             doc.Size,
		MD5:              doc.MD5,
		SysID:            doc.SysID,
		Destination:      doc.Destination,
		DistID:           doc.DistID,
		TransmissionDate: formatTime(doc.TransmissionDate),
		Publisher:        doc.Publisher,
		DocDate:          formatTime(doc.DocDate),
		Product:          doc.Routing.Product,
		Seq:              doc.Seq,
		Lang:             doc.Lang,
		NewsSource:       doc.NewsSource,
		Origin:           doc.Origin,
		ServiceID:        doc.ServiceID,
		Urgency:          doc.Urgency,
		Brand:            doc.Brand,
		TempPerm:         doc.TempPerm,
		Retention:        doc.Retention,
		Hot:              doc.Hot,
		OriginalSource:   doc.OriginalSource,
		AccessionNumber:  doc.AccessionNumber,
		PageCitation:     doc.PageCitation,
		DisplayDate:      formatTime(doc.DisplayDate),
		CodingRecord:     *codingRecordOf(doc.Coding),
		Headline:         doc.Headline,
		HeadlineBrand:    doc.HeadlineBrand,
		Text:             doc.Text,
		HTML:             doc.HTML,
		CopyrightYear:    doc.Copyright.Year,
		CopyrightHolder:  doc.Holder,
		Website:          doc.Website,
		Language:         doc.Language,
	}
	if c := doc.Company; c != nil {
		r.CompanyName, r.CompanyAddress, r.CompanyZip, r.CompanyCity = &c.Name, &c.Address, &c.Zip, &c.City
	}
	for _, d := range doc.Deletes {
		r.Deletes = append(r.Deletes, DeleteRecord{
			Publisher: d.Publisher,
			DocDate:   formatTime(d.DocDate),
			Product:   d.Product,
			Seq:       d.Seq,
			Reason:    d.Reason,
		})
	}
	for _, m := range doc.Modifications {
		r.Modifications = append(r.Modifications, RecordOf(m))
	}
	return r
}
