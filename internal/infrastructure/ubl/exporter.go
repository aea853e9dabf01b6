// Package ubl exporta facturas como documentos UBL 2.1 (Invoice) y calcula el digest
// SHA-256 de su forma canónica (C14N 1.0), el mismo que iría en un ds:DigestValue.
package ubl

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// InvoiceTypeCode código UN/CEFACT de factura comercial.
const InvoiceTypeCode = "380"

// Exporter implementa usecase.InvoiceExporter.
type Exporter struct {
	currency string
}

var _ usecase.InvoiceExporter = (*Exporter)(nil)

// NewExporter currency vacío = USD.
func NewExporter(currency string) *Exporter {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &Exporter{currency: currency}
}

// Export devuelve el XML indentado y el digest base64 de su forma canónica.
func (e *Exporter) Export(org *entity.Org, doc *entity.SalesDoc) ([]byte, string, error) {
	if org == nil || doc == nil {
		return nil, "", fmt.Errorf("ubl: faltan org o documento")
	}
	root := e.build(org, doc)

	out := etree.NewDocument()
	out.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	out.SetRoot(root)
	out.Indent(2)
	xmlBytes, err := out.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("ubl: serializar: %w", err)
	}

	// el digest se calcula sobre el elemento raíz sin declaración ni indentación
	plain := etree.NewDocument()
	plain.SetRoot(root.Copy())
	raw, err := plain.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("ubl: serializar: %w", err)
	}
	digest, err := Digest(raw)
	if err != nil {
		return nil, "", err
	}
	return xmlBytes, digest, nil
}

// Digest SHA-256 en base64 de la forma canónica de data.
func Digest(data []byte) (string, error) {
	canonical, err := canonicalize(data)
	if err != nil {
		return "", fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func (e *Exporter) build(org *entity.Org, doc *entity.SalesDoc) *etree.Element {
	inv := etree.NewElement("Invoice")
	inv.CreateAttr("xmlns", NsInvoice)
	inv.CreateAttr("xmlns:cac", NsCac)
	inv.CreateAttr("xmlns:cbc", NsCbc)

	issue := doc.Date.In(org.Location())
	cbc(inv, "UBLVersionID", "2.1")
	cbc(inv, "ID", doc.Number)
	cbc(inv, "IssueDate", issue.Format("2006-01-02"))
	cbc(inv, "IssueTime", issue.Format("15:04:05-07:00"))
	cbc(inv, "InvoiceTypeCode", InvoiceTypeCode)
	if doc.Notes != "" {
		cbc(inv, "Note", doc.Notes)
	}
	cbc(inv, "DocumentCurrencyCode", e.currency)
	cbc(inv, "LineCountNumeric", strconv.Itoa(len(doc.Items)))

	party(inv.CreateElement("cac:AccountingSupplierParty"), org.Name, org.Domain)
	party(inv.CreateElement("cac:AccountingCustomerParty"), doc.Account, "")

	// ---- cac:TaxTotal
	tax := inv.CreateElement("cac:TaxTotal")
	e.amount(tax, "TaxAmount", doc.Tax)
	sub := tax.CreateElement("cac:TaxSubtotal")
	e.amount(sub, "TaxableAmount", doc.Subtotal)
	e.amount(sub, "TaxAmount", doc.Tax)
	cat := sub.CreateElement("cac:TaxCategory")
	cbc(cat, "Percent", doc.TaxRate.StringFixed(2))

	// ---- cac:LegalMonetaryTotal
	total := inv.CreateElement("cac:LegalMonetaryTotal")
	e.amount(total, "LineExtensionAmount", doc.Subtotal)
	e.amount(total, "TaxExclusiveAmount", doc.Subtotal)
	e.amount(total, "TaxInclusiveAmount", doc.Total)
	e.amount(total, "PayableAmount", doc.Total)

	// ---- cac:InvoiceLine
	for i, it := range doc.Items {
		line := inv.CreateElement("cac:InvoiceLine")
		cbc(line, "ID", strconv.Itoa(i+1))
		q := cbc(line, "InvoicedQuantity", it.Qty.String())
		q.CreateAttr("unitCode", "EA")
		e.amount(line, "LineExtensionAmount", it.Qty.Mul(it.Price))
		item := line.CreateElement("cac:Item")
		cbc(item, "Name", it.Name)
		if it.ProductID != "" {
			id := item.CreateElement("cac:SellersItemIdentification")
			cbc(id, "ID", it.ProductID)
		}
		e.amount(line.CreateElement("cac:Price"), "PriceAmount", it.Price)
	}
	return inv
}

func party(parent *etree.Element, name, website string) {
	p := parent.CreateElement("cac:Party")
	if website != "" {
		cbc(p, "WebsiteURI", website)
	}
	cbc(p.CreateElement("cac:PartyName"), "Name", name)
}

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func (e *Exporter) amount(parent *etree.Element, local string, v decimal.Decimal) {
	cbc(parent, local, v.StringFixed(2)).CreateAttr("currencyID", e.currency)
}
