package dataset

import (
	"archive/zip"
	"bytes"
	"testing"
)

// buildXLSX assembles a minimal xlsx container: workbook, relationships,
// shared strings, and one worksheet mixing shared and inline values.
func buildXLSX(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets><sheet name="Vendas" sheetId="1" r:id="rId1"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>Categoria</t></si><si><t>Valor</t></si><si><t>Eletronicos</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
    <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>1500.5</v></c></row>
    <row r="3"><c r="A3" t="inlineStr"><is><t>Roupas</t></is></c><c r="B3"><v>200</v></c></row>
    <row r="4"><c r="B4"><v>75</v></c></row>
  </sheetData>
</worksheet>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	ds, err := ParseXLSX(buildXLSX(t), "vendas.xlsx")
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[0] != "Categoria" || ds.Columns[1] != "Valor" {
		t.Fatalf("columns = %v", ds.Columns)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("rows = %d", len(ds.Rows))
	}
	if ds.Rows[0]["Categoria"] != "Eletronicos" || ds.Rows[0]["Valor"] != "1500.5" {
		t.Fatalf("row 1 = %v", ds.Rows[0])
	}
	if ds.Rows[1]["Categoria"] != "Roupas" {
		t.Fatalf("inline string row = %v", ds.Rows[1])
	}
	// Row 4 has no A cell; the gap must come back as nil, not a shifted value.
	if ds.Rows[2]["Categoria"] != nil || ds.Rows[2]["Valor"] != "75" {
		t.Fatalf("sparse row = %v", ds.Rows[2])
	}
}

func TestParseXLSXNotAZip(t *testing.T) {
	if _, err := ParseXLSX([]byte("definitely not a zip"), "x.xlsx"); err == nil {
		t.Fatal("expected container error")
	}
}

func TestParseXLSXNoWorksheets(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("xl/workbook.xml")
	w.Write([]byte(`<workbook><sheets></sheets></workbook>`))
	zw.Close()
	if _, err := ParseXLSX(buf.Bytes(), "x.xlsx"); err == nil {
		t.Fatal("expected no-worksheets error")
	}
}

func TestNormalizeRelPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tc := range cases {
		if got := normalizeRelPath(tc.in); got != tc.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "B2": 1, "Z9": 25, "AA10": 26, "AB3": 27}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
