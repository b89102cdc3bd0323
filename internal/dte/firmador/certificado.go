package firmador

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Facturacion-api/internal/domain"
)

var (
	reBloquePrivado = regexp.MustCompile(`(?s)<[Pp]rivate[Kk]ey>(.*?)</[Pp]rivate[Kk]ey>`)
	// el encodied de la llave privada es el que precede a <format>PKCS#8</format>;
	// el otro encodied del archivo es el certificado público X.509
	reEncodiedPKCS8 = regexp.MustCompile(`(?s)<[Ee]ncodied>(.*?)</[Ee]ncodied>\s*<[Ff]ormat>PKCS#8</[Ff]ormat>`)
	reEncodied      = regexp.MustCompile(`(?s)<[Ee]ncodied>(.*?)</[Ee]ncodied>`)
	reClave         = regexp.MustCompile(`<[Cc]lave>([^<]+)</[Cc]lave>`)
	reBase64        = regexp.MustCompile(`[A-Za-z0-9+/=]+`)
)

// Credencial es el contenido útil del contenedor XML que el portal de MH
// entrega como .crt: la llave privada PKCS#8 y el SHA-512 de su contraseña.
type Credencial struct {
	llaveBytes []byte
	// ClaveHex es el SHA-512 hexadecimal de la contraseña de la llave,
	// tal como viene en <privateKey><clave>.
	ClaveHex string
}

// CargarCredencial lee y parsea el contenedor XML de credenciales de MH.
func CargarCredencial(ruta string) (*Credencial, error) {
	raw, err := os.ReadFile(ruta)
	if err != nil {
		return nil, fmt.Errorf("firmador: leyendo certificado: %w", err)
	}
	return ParsearCredencial(raw)
}

// ParsearCredencial extrae la llave privada y el hash de la contraseña del
// contenido crudo del contenedor. Trabaja primero con regex sobre el texto
// (los parsers XML truncan el encodied cuando el archivo viene mal codificado)
// y cae a etree si el formato lo permite.
func ParsearCredencial(raw []byte) (*Credencial, error) {
	texto := decodificarTexto(raw)

	encodied, claveHex := extraerConRegex(texto)
	if encodied == "" {
		encodied, claveHex = extraerConXML(raw, claveHex)
	}
	if encodied == "" {
		return nil, fmt.Errorf("firmador: %w: no se encontró <privateKey><encodied> en el contenedor",
			domain.ErrCertificadoFormato)
	}

	llaveBytes, err := decodificarBase64(encodied)
	if err != nil {
		return nil, fmt.Errorf("firmador: %w: %v", domain.ErrCertificadoFormato, err)
	}
	if len(llaveBytes) == 0 {
		return nil, fmt.Errorf("firmador: %w: encodied vacío", domain.ErrCertificadoFormato)
	}
	return &Credencial{llaveBytes: llaveBytes, ClaveHex: claveHex}, nil
}

// decodificarTexto convierte el archivo a texto probando las codificaciones
// con las que llegan los contenedores: UTF-8 (con o sin BOM), Windows-1252 y
// Latin-1. Los tags y el base64 son ASCII, así que cualquier decodificación
// consistente sirve.
func decodificarTexto(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw)
	}
	if texto, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(texto)
	}
	texto, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(texto)
}

func extraerConRegex(texto string) (encodied, claveHex string) {
	bloque := reBloquePrivado.FindStringSubmatch(texto)
	if bloque == nil {
		return "", ""
	}
	contenido := bloque[1]
	if m := reEncodiedPKCS8.FindStringSubmatch(contenido); m != nil {
		encodied = strings.TrimSpace(m[1])
	} else if m := reEncodied.FindStringSubmatch(contenido); m != nil {
		encodied = strings.TrimSpace(m[1])
	}
	if m := reClave.FindStringSubmatch(contenido); m != nil {
		claveHex = strings.TrimSpace(m[1])
	}
	return encodied, claveHex
}

// extraerConXML es el fallback cuando el regex no encuentra el bloque.
func extraerConXML(raw []byte, claveHex string) (string, string) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return "", claveHex
	}
	raiz := doc.Root()
	if raiz == nil {
		return "", claveHex
	}
	priv := primerElemento(raiz, "privateKey", "PrivateKey")
	if priv == nil {
		return "", claveHex
	}
	var encodied string
	if enc := primerElemento(priv, "encodied", "Encodied"); enc != nil {
		encodied = strings.TrimSpace(enc.Text())
	}
	if claveHex == "" {
		if clave := primerElemento(priv, "clave", "Clave"); clave != nil {
			claveHex = strings.TrimSpace(clave.Text())
		}
	}
	return encodied, claveHex
}

func primerElemento(padre *etree.Element, nombres ...string) *etree.Element {
	for _, nombre := range nombres {
		if e := padre.FindElement(nombre); e != nil {
			return e
		}
	}
	// sin importar mayúsculas ni namespace
	for _, hijo := range padre.ChildElements() {
		tag := strings.ToLower(hijo.Tag)
		for _, nombre := range nombres {
			if tag == strings.ToLower(nombre) {
				return hijo
			}
		}
	}
	return nil
}

// decodificarBase64 limpia el encodied (saltos de línea, espacios y cualquier
// carácter fuera del alfabeto base64), repara el padding y decodifica.
func decodificarBase64(encodied string) ([]byte, error) {
	limpio := strings.Join(reBase64.FindAllString(encodied, -1), "")
	if resto := len(limpio) % 4; resto != 0 {
		limpio += strings.Repeat("=", 4-resto)
	}
	datos, err := base64.StdEncoding.DecodeString(limpio)
	if err == nil {
		return datos, nil
	}
	datos, errURL := base64.URLEncoding.DecodeString(limpio)
	if errURL == nil {
		return datos, nil
	}
	return nil, fmt.Errorf("base64 inválido: %w", err)
}
