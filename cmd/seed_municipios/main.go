// seed_municipios genera el script SQL que carga la tabla municipios a partir
// del XML oficial Municipios.xml de la DIAN (codificado en ISO-8859-1).
//
// Uso: go run ./cmd/seed_municipios [ruta/Municipios.xml] [salida.sql]
// Por defecto lee Municipios.xml y escribe municipios_seed.sql en el directorio actual.
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

type municipio struct {
	Codigo       string
	Nombre       string
	Departamento string
}

func main() {
	xmlPath, outPath := "Municipios.xml", "municipios_seed.sql"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	municipios, err := parseMunicipios(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, municipios); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d municipios\n", outPath, len(municipios))
}

// parseMunicipios lee el XML y descarta filas incompletas. Salida ordenada por código.
func parseMunicipios(r io.Reader) ([]municipio, error) {
	var p parametros
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []municipio
	for _, v := range p.Tabla.Valores {
		m := municipio{
			Codigo:       strings.TrimSpace(v.Cod),
			Nombre:       strings.TrimSpace(v.Nombre),
			Departamento: strings.TrimSpace(v.Otro.Valor),
		}
		if len(m.Codigo) != 5 || m.Nombre == "" || m.Departamento == "" || seen[m.Codigo] {
			continue
		}
		seen[m.Codigo] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func writeSQL(w io.Writer, municipios []municipio) error {
	if len(municipios) == 0 {
		return fmt.Errorf("no hay municipios para escribir")
	}
	var b strings.Builder
	b.WriteString("-- Municipios Colombia (código DANE)\n")
	b.WriteString("-- Generado desde Municipios.xml (DIAN)\n\n")
	b.WriteString("INSERT INTO municipios (codigo, nombre, departamento) VALUES\n")
	for i, m := range municipios {
		sep := ","
		if i == len(municipios)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    ('%s', '%s', '%s')%s\n", m.Codigo, escapeSQL(m.Nombre), escapeSQL(m.Departamento), sep)
	}
	b.WriteString("ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre, departamento = EXCLUDED.departamento;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
