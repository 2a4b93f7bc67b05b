package exporter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"clinicpulse/pkg/contracts/domain"
)

// DeckTitle is the title of the generated summary deck.
const DeckTitle = "Healthcare Waiting-Time Compliance Dashboard"

// EMU conversions for slide geometry (914400 EMU per inch, 10x7.5in
// slide).
const (
	emuPerInch = 914400
	slideCx    = 10 * emuPerInch
	slideCy    = emuPerInch * 15 / 2
)

// BuildKPIBullets formats the summary-slide bullet lines from the
// snapshot KPIs. Pure string formatting; all numbers were computed by
// the metric engine.
func BuildKPIBullets(s *domain.Snapshot) []string {
	bullets := []string{
		fmt.Sprintf("Total visits analyzed: %d", s.Summary.TotalVisits),
		fmt.Sprintf("Noncompliant visits: %.1f%%", s.Summary.NoncompliantPct),
	}
	if s.Summary.BestDepartment != "-" {
		bullets = append(bullets,
			fmt.Sprintf("Best department: %s (%.1f%%)", s.Summary.BestDepartment, s.Summary.BestPct),
			fmt.Sprintf("Worst department: %s (%.1f%%)", s.Summary.WorstDepartment, s.Summary.WorstPct))
	}
	bullets = append(bullets,
		fmt.Sprintf("Licensing risks: %d expired, %d expiring soon", s.Summary.ExpiredCount, s.Summary.ExpiringSoonCount))
	return bullets
}

// BuildDeck assembles the fixed four-slide PPTX artifact: title slide
// with generation timestamp, KPI bullets, the two charts side by side,
// and the licensing-risk list. The result is the complete file as an
// in-memory byte buffer.
//
// The OOXML parts are written directly; chart images are optional and
// replaced by a short notice when absent.
func BuildDeck(s *domain.Snapshot, bullets []string, weeklyPNG, deptPNG []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML())},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"ppt/presentation.xml", []byte(presentationXML())},
		{"ppt/_rels/presentation.xml.rels", []byte(presentationRelsXML())},
		{"ppt/slideMasters/slideMaster1.xml", []byte(slideMasterXML)},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", []byte(slideMasterRelsXML)},
		{"ppt/slideLayouts/slideLayout1.xml", []byte(slideLayoutXML)},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", []byte(slideLayoutRelsXML)},
		{"ppt/theme/theme1.xml", []byte(themeXML)},
		{"ppt/slides/slide1.xml", []byte(titleSlideXML(s.GeneratedAt))},
		{"ppt/slides/_rels/slide1.xml.rels", []byte(slideRelsXML(false, false))},
		{"ppt/slides/slide2.xml", []byte(bulletSlideXML("Key Findings", bullets))},
		{"ppt/slides/_rels/slide2.xml.rels", []byte(slideRelsXML(false, false))},
		{"ppt/slides/slide3.xml", []byte(chartSlideXML(weeklyPNG != nil, deptPNG != nil))},
		{"ppt/slides/_rels/slide3.xml.rels", []byte(slideRelsXML(weeklyPNG != nil, deptPNG != nil))},
		{"ppt/slides/slide4.xml", []byte(riskSlideXML(s.AtRiskDoctors()))},
		{"ppt/slides/_rels/slide4.xml.rels", []byte(slideRelsXML(false, false))},
	}
	if weeklyPNG != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"ppt/media/image1.png", weeklyPNG})
	}
	if deptPNG != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{"ppt/media/image2.png", deptPNG})
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create deck part %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return nil, fmt.Errorf("failed to write deck part %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize deck: %w", err)
	}
	return buf.Bytes(), nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func contentTypesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`</Relationships>`

func presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 2+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`, slideCx, slideCy, slideCy, slideCx)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const emptySpTree = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

const slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld>` + emptySpTree + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideMasterRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld>` + emptySpTree + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const slideLayoutRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

// themeXML is the smallest complete Office theme: one color scheme,
// one font scheme, and the mandatory three-entry format scheme lists.
const themeXML = xmlHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`

// slideRelsXML builds a slide's relationship part. The chart slide
// also references whichever media images are present.
func slideRelsXML(withWeekly, withDept bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if withWeekly {
		b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>`)
	}
	if withDept {
		b.WriteString(`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image2.png"/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// textLine is one paragraph of a text box.
type textLine struct {
	text string
	size int // font size in points
	bold bool
}

// inches converts inches to EMU.
func inches(v float64) int64 {
	return int64(v * emuPerInch)
}

func xmlEscape(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}

// textBox renders a plain text box shape at the given position.
func textBox(id int, name string, x, y, cx, cy int64, lines []textLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, xmlEscape(name))
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, cx, cy)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)
	for _, line := range lines {
		bold := 0
		if line.bold {
			bold = 1
		}
		fmt.Fprintf(&b, `<a:p><a:r><a:rPr lang="en-US" sz="%d" b="%d"/><a:t>%s</a:t></a:r></a:p>`,
			line.size*100, bold, xmlEscape(line.text))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

// picture renders an image shape referencing a slide relationship.
func picture(id int, relID string, x, y, cx, cy int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="chart%d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, id)
	fmt.Fprintf(&b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, relID)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`, x, y, cx, cy)
	return b.String()
}

// slideXML wraps shapes into a complete slide part.
func slideXML(shapes ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld>` + emptySpTree)
	for _, s := range shapes {
		b.WriteString(s)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func titleShape(title string) string {
	return textBox(2, "Title", inches(0.5), inches(0.4), inches(9), inches(1),
		[]textLine{{text: title, size: 32, bold: true}})
}

func titleSlideXML(generatedAt time.Time) string {
	title := textBox(2, "Title", inches(0.5), inches(2.2), inches(9), inches(1.4),
		[]textLine{{text: DeckTitle, size: 36, bold: true}})
	subtitle := textBox(3, "Subtitle", inches(0.5), inches(3.8), inches(9), inches(1),
		[]textLine{
			{text: fmt.Sprintf("Generated on %s", generatedAt.Format("2006-01-02 15:04")), size: 18},
			{text: "Dashboard Summary", size: 18},
		})
	return slideXML(title, subtitle)
}

func bulletSlideXML(title string, bullets []string) string {
	lines := make([]textLine, 0, len(bullets))
	for _, bl := range bullets {
		lines = append(lines, textLine{text: bl, size: 20})
	}
	body := textBox(3, "Body", inches(0.7), inches(1.6), inches(8.6), inches(5),
		lines)
	return slideXML(titleShape(title), body)
}

func chartSlideXML(hasWeekly, hasDept bool) string {
	shapes := []string{titleShape("Weekly & Department Compliance")}
	if hasWeekly {
		shapes = append(shapes, picture(3, "rId2", inches(0.5), inches(1.5), inches(4.5), inches(3)))
	}
	if hasDept {
		shapes = append(shapes, picture(4, "rId3", inches(5.2), inches(1.5), inches(4.5), inches(3)))
	}
	if !hasWeekly && !hasDept {
		shapes = append(shapes, textBox(3, "Body", inches(0.7), inches(1.6), inches(8.6), inches(1),
			[]textLine{{text: "No chart data available.", size: 20}}))
	}
	return slideXML(shapes...)
}

func riskSlideXML(risky []domain.DoctorSummary) string {
	var lines []textLine
	if len(risky) == 0 {
		lines = []textLine{{text: "No licensing risks detected.", size: 20}}
	} else {
		for _, d := range risky {
			lines = append(lines, textLine{
				text: fmt.Sprintf("%s - License Expires: %s - Status: %s",
					d.Doctor, formatDatePtr(d.LicenseExpiry), d.Risk),
				size: 18,
			})
		}
	}
	body := textBox(3, "Body", inches(0.7), inches(1.6), inches(8.6), inches(5), lines)
	return slideXML(titleShape("Doctor Licensing Risks"), body)
}
