package firmador

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/jhoicas/Facturacion-api/internal/domain"
)

// LlavePrivada carga la llave RSA desde los bytes extraídos del contenedor.
// Los contenedores reales llegan en varias presentaciones: DER PKCS#8 limpio,
// DER con basura al inicio o bytes nulos al final (archivos truncados o
// re-guardados), PEM, y hasta base64 de un PEM en texto. Se prueban en orden.
func (c *Credencial) LlavePrivada() (*rsa.PrivateKey, error) {
	datos := c.llaveBytes

	if bytes.HasPrefix(datos, []byte("-----BEGIN")) {
		return llaveDesdePEM(bytes.TrimSpace(datos))
	}
	datos = bytes.TrimPrefix(datos, []byte{0xEF, 0xBB, 0xBF})

	// DER: saltar hasta el primer byte de secuencia ASN.1
	der := datos
	if len(der) > 0 && der[0] != 0x30 {
		if idx := bytes.IndexByte(der, 0x30); idx >= 0 {
			der = der[idx:]
		}
	}
	if llave, err := llaveDesdeDER(der); err == nil {
		return llave, nil
	}

	// DER con bytes nulos al final
	if recortado := bytes.TrimRight(datos, "\x00"); len(recortado) != len(datos) {
		if llave, err := llaveDesdeDER(recortado); err == nil {
			return llave, nil
		}
	}

	// el encodied puede ser base64 de un PEM en texto
	if texto := strings.TrimSpace(string(datos)); strings.Contains(texto, "BEGIN") {
		if llave, err := llaveDesdePEM([]byte(texto)); err == nil {
			return llave, nil
		}
	}

	return nil, fmt.Errorf("firmador: %w: la llave no es PKCS#8 DER ni PEM reconocible",
		domain.ErrLlaveNoCargable)
}

func llaveDesdeDER(der []byte) (*rsa.PrivateKey, error) {
	if parsed, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if llave, ok := parsed.(*rsa.PrivateKey); ok {
			return llave, nil
		}
		return nil, fmt.Errorf("firmador: %w: la llave PKCS#8 no es RSA", domain.ErrLlaveNoCargable)
	}
	if llave, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return llave, nil
	}
	return nil, domain.ErrLlaveNoCargable
}

func llaveDesdePEM(datos []byte) (*rsa.PrivateKey, error) {
	for bloque, resto := pem.Decode(datos); bloque != nil; bloque, resto = pem.Decode(resto) {
		if llave, err := llaveDesdeDER(bloque.Bytes); err == nil {
			return llave, nil
		}
	}
	return nil, fmt.Errorf("firmador: %w: PEM sin llave RSA", domain.ErrLlaveNoCargable)
}
