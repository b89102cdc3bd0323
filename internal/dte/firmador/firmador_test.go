package firmador

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

var (
	llavePrueba     *rsa.PrivateKey
	llavePruebaOnce sync.Once
)

func llaveRSA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	llavePruebaOnce.Do(func() {
		var err error
		llavePrueba, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return llavePrueba
}

func sha512Hex(clave string) string {
	suma := sha512.Sum512([]byte(clave))
	return hex.EncodeToString(suma[:])
}

// contenedorXML arma un contenedor como el .crt de MH: la llave privada en
// PKCS#8 base64 con su hash de contraseña, más la llave pública como señuelo.
func contenedorXML(t *testing.T, llave *rsa.PrivateKey, clave string) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(llave)
	require.NoError(t, err)
	pub, err := x509.MarshalPKIXPublicKey(&llave.PublicKey)
	require.NoError(t, err)

	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<CertificadoMH>
  <nit>06141234561012</nit>
  <publicKey>
    <encodied>%s</encodied>
    <format>X.509</format>
  </publicKey>
  <privateKey>
    <encodied>%s</encodied>
    <format>PKCS#8</format>
    <clave>%s</clave>
  </privateKey>
</CertificadoMH>`,
		base64.StdEncoding.EncodeToString(pub),
		base64.StdEncoding.EncodeToString(der),
		sha512Hex(clave),
	))
}

func escribirCertificado(t *testing.T, contenido []byte) string {
	t.Helper()
	ruta := filepath.Join(t.TempDir(), "certificado.crt")
	require.NoError(t, os.WriteFile(ruta, contenido, 0o600))
	return ruta
}

func TestParsearCredencial(t *testing.T) {
	llave := llaveRSA(t)
	cred, err := ParsearCredencial(contenedorXML(t, llave, "secreta123"))
	require.NoError(t, err)

	assert.Equal(t, sha512Hex("secreta123"), cred.ClaveHex)

	cargada, err := cred.LlavePrivada()
	require.NoError(t, err)
	assert.True(t, llave.Equal(cargada))
}

func TestParsearCredencialIgnoraLlavePublica(t *testing.T) {
	llave := llaveRSA(t)
	cred, err := ParsearCredencial(contenedorXML(t, llave, "x"))
	require.NoError(t, err)

	// si hubiera tomado el encodied X.509 la carga fallaría
	_, err = cred.LlavePrivada()
	require.NoError(t, err)
}

func TestParsearCredencialBase64ConSaltos(t *testing.T) {
	llave := llaveRSA(t)
	contenido := string(contenedorXML(t, llave, "x"))

	// partir el base64 en líneas de 64, como lo guardan algunos editores
	inicio := strings.Index(contenido, "<format>PKCS#8")
	bloque := contenido[:inicio]
	idx := strings.LastIndex(bloque, "<encodied>") + len("<encodied>")
	fin := strings.LastIndex(bloque, "</encodied>")
	b64 := bloque[idx:fin]
	var partes []string
	for len(b64) > 64 {
		partes = append(partes, b64[:64])
		b64 = b64[64:]
	}
	partes = append(partes, b64)
	conSaltos := bloque[:idx] + strings.Join(partes, "\r\n  ") + contenido[fin:]

	cred, err := ParsearCredencial([]byte(conSaltos))
	require.NoError(t, err)
	_, err = cred.LlavePrivada()
	require.NoError(t, err)
}

func TestParsearCredencialLatin1(t *testing.T) {
	llave := llaveRSA(t)
	contenido := contenedorXML(t, llave, "x")
	// comentario con bytes Latin-1 crudos (0xF3 = ó) que invalidan UTF-8
	contenido = append(contenido, []byte("\n<!-- emisi\xf3n -->")...)

	cred, err := ParsearCredencial(contenido)
	require.NoError(t, err)
	_, err = cred.LlavePrivada()
	require.NoError(t, err)
}

func TestParsearCredencialConBOM(t *testing.T) {
	llave := llaveRSA(t)
	contenido := append([]byte{0xEF, 0xBB, 0xBF}, contenedorXML(t, llave, "x")...)

	_, err := ParsearCredencial(contenido)
	require.NoError(t, err)
}

func TestParsearCredencialSinLlavePrivada(t *testing.T) {
	_, err := ParsearCredencial([]byte(`<CertificadoMH><nit>x</nit></CertificadoMH>`))
	require.ErrorIs(t, err, domain.ErrCertificadoFormato)
}

func TestLlavePrivadaConBasuraInicial(t *testing.T) {
	llave := llaveRSA(t)
	der, err := x509.MarshalPKCS8PrivateKey(llave)
	require.NoError(t, err)

	cred := &Credencial{llaveBytes: append([]byte{0x00, 0x01, 0x02}, der...)}
	cargada, err := cred.LlavePrivada()
	require.NoError(t, err)
	assert.True(t, llave.Equal(cargada))
}

func TestLlavePrivadaConNulosAlFinal(t *testing.T) {
	llave := llaveRSA(t)
	der, err := x509.MarshalPKCS8PrivateKey(llave)
	require.NoError(t, err)

	cred := &Credencial{llaveBytes: append(der, 0x00, 0x00, 0x00)}
	_, err = cred.LlavePrivada()
	require.NoError(t, err)
}

func TestLlavePrivadaPEMTexto(t *testing.T) {
	llave := llaveRSA(t)
	der, err := x509.MarshalPKCS8PrivateKey(llave)
	require.NoError(t, err)
	pemTexto := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	cred := &Credencial{llaveBytes: pemTexto}
	cargada, err := cred.LlavePrivada()
	require.NoError(t, err)
	assert.True(t, llave.Equal(cargada))
}

func TestLlavePrivadaIlegible(t *testing.T) {
	cred := &Credencial{llaveBytes: []byte("esto no es una llave")}
	_, err := cred.LlavePrivada()
	require.ErrorIs(t, err, domain.ErrLlaveNoCargable)
}

func TestValidarClave(t *testing.T) {
	cred := &Credencial{ClaveHex: sha512Hex("secreta123")}

	assert.True(t, cred.ValidarClave("secreta123"))
	assert.False(t, cred.ValidarClave("otra"))
	assert.False(t, (&Credencial{}).ValidarClave("secreta123"), "sin hash no hay validación posible")
}

func TestFirmarVerificable(t *testing.T) {
	llave := llaveRSA(t)
	payload := []byte(`{"identificacion":{"tipoDte":"01"}}`)

	jws, err := Firmar(llave, payload)
	require.NoError(t, err)

	partes := strings.Split(jws, ".")
	require.Len(t, partes, 3)

	encabezado, err := base64.RawURLEncoding.DecodeString(partes[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"RS512"}`, string(encabezado))

	cuerpo, err := base64.RawURLEncoding.DecodeString(partes[1])
	require.NoError(t, err)
	assert.Equal(t, payload, cuerpo, "el payload viaja byte a byte")

	firma, err := base64.RawURLEncoding.DecodeString(partes[2])
	require.NoError(t, err)
	require.NoError(t, jwt.SigningMethodRS512.Verify(partes[0]+"."+partes[1], firma, &llave.PublicKey))
}

func TestFirmarDTE(t *testing.T) {
	llave := llaveRSA(t)
	ruta := escribirCertificado(t, contenedorXML(t, llave, "secreta123"))
	f := New(logger.New(logger.Config{Level: "error"}))

	jws, err := f.FirmarDTE(ruta, "secreta123", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Len(t, strings.Split(jws, "."), 3)
}

func TestFirmarDTEClaveIncorrecta(t *testing.T) {
	llave := llaveRSA(t)
	ruta := escribirCertificado(t, contenedorXML(t, llave, "secreta123"))
	f := New(logger.New(logger.Config{Level: "error"}))

	_, err := f.FirmarDTE(ruta, "equivocada", []byte(`{"a":1}`))
	require.ErrorIs(t, err, domain.ErrClaveIncorrecta)
}

// La contraseña se valida contra el hash antes de tocar la llave: un
// contenedor con llave corrupta y contraseña mala reporta la contraseña.
func TestClaveSeValidaAntesDeCargarLlave(t *testing.T) {
	contenido := []byte(fmt.Sprintf(`<CertificadoMH><privateKey>
<encodied>%s</encodied><format>PKCS#8</format>
<clave>%s</clave></privateKey></CertificadoMH>`,
		base64.StdEncoding.EncodeToString([]byte("llave corrupta")),
		sha512Hex("secreta123")))
	ruta := escribirCertificado(t, contenido)
	f := New(logger.New(logger.Config{Level: "error"}))

	_, err := f.FirmarDTE(ruta, "equivocada", []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrClaveIncorrecta)

	_, err = f.FirmarDTE(ruta, "secreta123", []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrLlaveNoCargable)
}

func TestFirmarDTECertificadoInexistente(t *testing.T) {
	f := New(logger.New(logger.Config{Level: "error"}))
	_, err := f.FirmarDTE(filepath.Join(t.TempDir(), "no-existe.crt"), "x", []byte(`{}`))
	require.Error(t, err)
}
