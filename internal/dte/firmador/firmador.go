// Package firmador firma DTEs con la llave privada del contenedor XML de
// credenciales que entrega el portal de MH (factura.gob.sv). Produce un JWS
// compacto RS512 sobre los bytes exactos del JSON, el mismo formato que los
// firmadores oficiales.
package firmador

import (
	"crypto/rsa"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// encabezadoRS512 es el header JOSE fijo, ya serializado: el firmador de MH
// espera exactamente {"alg":"RS512"}.
var encabezadoRS512 = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS512"}`))

// ValidarClave compara la contraseña con el SHA-512 guardado en el contenedor.
func (c *Credencial) ValidarClave(clave string) bool {
	if c.ClaveHex == "" {
		return false
	}
	suma := sha512.Sum512([]byte(clave))
	esperado := strings.ToLower(strings.TrimSpace(c.ClaveHex))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(suma[:])), []byte(esperado)) == 1
}

// Firmar produce el JWS compacto (header.payload.firma) con RS512 sobre los
// bytes exactos del payload.
func Firmar(llave *rsa.PrivateKey, payload []byte) (string, error) {
	sinFirmar := encabezadoRS512 + "." + base64.RawURLEncoding.EncodeToString(payload)
	firma, err := jwt.SigningMethodRS512.Sign(sinFirmar, llave)
	if err != nil {
		return "", fmt.Errorf("firmador: firmando payload: %w", err)
	}
	return sinFirmar + "." + base64.RawURLEncoding.EncodeToString(firma), nil
}

// Firmador carga credenciales y firma documentos. Es el servicio que usa el
// orquestador de emisión.
type Firmador struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Firmador {
	return &Firmador{log: log}
}

// FirmarDTE firma el JSON de un DTE con el certificado de la empresa. La
// contraseña se valida contra el hash del contenedor ANTES de intentar cargar
// la llave: así una contraseña equivocada se reporta como tal y no como
// certificado corrupto.
func (f *Firmador) FirmarDTE(rutaCertificado, clave string, payload []byte) (string, error) {
	credencial, err := CargarCredencial(rutaCertificado)
	if err != nil {
		return "", err
	}
	if credencial.ClaveHex != "" && !credencial.ValidarClave(clave) {
		return "", fmt.Errorf("firmador: %w", domain.ErrClaveIncorrecta)
	}
	llave, err := credencial.LlavePrivada()
	if err != nil {
		return "", err
	}
	jws, err := Firmar(llave, payload)
	if err != nil {
		return "", err
	}
	f.log.Debug().
		Int("payload_bytes", len(payload)).
		Int("jws_bytes", len(jws)).
		Msg("DTE firmado")
	return jws, nil
}
