// Package mh es el cliente REST del API de transmisión del Ministerio de
// Hacienda: autenticación, recepción de DTEs y eventos de invalidación.
package mh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/application/facturacion"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

var _ facturacion.TransmisorMH = (*Client)(nil)

// Endpoints por ambiente. El código de ambiente de la EMPRESA elige el set;
// dentro del envelope viaja el código invertido (ver entity.CodigoAmbienteDTE).
type Endpoints struct {
	Auth      string
	Recepcion string
	Anular    string
}

var endpointsPorAmbiente = map[string]Endpoints{
	entity.AmbienteProduccion: {
		Auth:      "https://api.dtes.mh.gob.sv/seguridad/auth",
		Recepcion: "https://api.dtes.mh.gob.sv/fesv/recepciondte",
		Anular:    "https://api.dtes.mh.gob.sv/fesv/anulardte",
	},
	entity.AmbientePruebas: {
		Auth:      "https://apitest.dtes.mh.gob.sv/seguridad/auth",
		Recepcion: "https://apitest.dtes.mh.gob.sv/fesv/recepciondte",
		Anular:    "https://apitest.dtes.mh.gob.sv/fesv/anulardte",
	},
}

// Client habla con el API de MH. Los timeouts van por operación: el auth
// responde rápido, la recepción puede tardar en horas pico.
type Client struct {
	http        *http.Client
	authTimeout time.Duration
	sendTimeout time.Duration
	log         *logger.Logger
	// base sobreescribe los endpoints, para pruebas
	base *Endpoints
}

// Opcion configura el cliente.
type Opcion func(*Client)

// ConEndpoints fija endpoints explícitos en lugar de los de MH.
func ConEndpoints(e Endpoints) Opcion {
	return func(c *Client) { c.base = &e }
}

// ConHTTPClient reemplaza el transporte.
func ConHTTPClient(h *http.Client) Opcion {
	return func(c *Client) { c.http = h }
}

func New(cfg config.MHConfig, log *logger.Logger, opts ...Opcion) *Client {
	c := &Client{
		http:        &http.Client{},
		authTimeout: time.Duration(cfg.AuthTimeoutSeconds) * time.Second,
		sendTimeout: time.Duration(cfg.SendTimeoutSeconds) * time.Second,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoints(empresa *entity.Empresa) Endpoints {
	if c.base != nil {
		return *c.base
	}
	if e, ok := endpointsPorAmbiente[empresa.Ambiente]; ok {
		return e
	}
	return endpointsPorAmbiente[entity.AmbientePruebas]
}

// respuestaMH es el cuerpo que devuelve MH en recepciondte y anulardte.
type respuestaMH struct {
	Estado           string   `json:"estado"`
	SelloRecibido    string   `json:"selloRecibido"`
	CodigoGeneracion string   `json:"codigoGeneracion"`
	CodigoMsg        string   `json:"codigoMsg"`
	ClasificaMsg     string   `json:"clasificaMsg"`
	DescripcionMsg   string   `json:"descripcionMsg"`
	Observaciones    []string `json:"observaciones"`
}

type respuestaAuth struct {
	Status string `json:"status"`
	Body   struct {
		Token string `json:"token"`
	} `json:"body"`
}

// Autenticar obtiene el token de API para la empresa. El token devuelto ya
// viene con el prefijo "Bearer" y se usa tal cual en Authorization.
func (c *Client) Autenticar(ctx context.Context, empresa *entity.Empresa) (string, error) {
	user := strings.TrimSpace(empresa.UserAPIMH)
	pwd := strings.TrimSpace(empresa.ClaveAPIMH)
	if user == "" || pwd == "" {
		return "", fmt.Errorf("mh: %w: la empresa no tiene credenciales de API configuradas",
			domain.ErrAutenticacionMH)
	}

	form := url.Values{}
	form.Set("user", user)
	form.Set("pwd", pwd)

	ctx, cancel := context.WithTimeout(ctx, c.authTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoints(empresa).Auth, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mh: armando petición de auth: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mh: %w: auth: %v", domain.ErrEnvioTransitorio, err)
	}
	defer resp.Body.Close()
	cuerpo, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return "", fmt.Errorf("mh: %w: auth HTTP %d", domain.ErrEnvioTransitorio, resp.StatusCode)
		}
		return "", fmt.Errorf("mh: %w: HTTP %d: %s",
			domain.ErrAutenticacionMH, resp.StatusCode, resumenCuerpo(cuerpo))
	}

	var datos respuestaAuth
	if err := json.Unmarshal(cuerpo, &datos); err != nil || datos.Body.Token == "" {
		return "", fmt.Errorf("mh: %w: respuesta sin token", domain.ErrAutenticacionMH)
	}
	c.log.Debug().Str("empresa_id", empresa.ID).Msg("token MH obtenido")
	return datos.Body.Token, nil
}

// EnviarDTE transmite el documento y devuelve el sello de recepción.
// Un estado distinto de PROCESADO es un RechazoMH; los 5xx y errores de red
// son transitorios y la tarea los reintenta.
func (c *Client) EnviarDTE(ctx context.Context, empresa *entity.Empresa, envio facturacion.EnvioDTE) (string, error) {
	token, err := c.Autenticar(ctx, empresa)
	if err != nil {
		return "", err
	}

	envelope := map[string]any{
		"ambiente":         entity.CodigoAmbienteDTE(empresa.Ambiente),
		"idEnvio":          1,
		"version":          envio.Version,
		"tipoDte":          envio.TipoDTE,
		"documento":        envio.Documento,
		"codigoGeneracion": strings.ToUpper(envio.CodigoGeneracion),
	}
	datos, err := c.transmitir(ctx, token, c.endpoints(empresa).Recepcion, envelope)
	if err != nil {
		return "", err
	}

	if datos.Estado != "PROCESADO" {
		c.log.Warn().
			Str("codigo_generacion", envio.CodigoGeneracion).
			Str("estado", datos.Estado).
			Str("descripcion", datos.DescripcionMsg).
			Msg("MH rechazó el DTE")
		return "", &domain.RechazoMH{
			Codigo:        datos.CodigoMsg,
			Descripcion:   oMensaje(datos.DescripcionMsg),
			Observaciones: datos.Observaciones,
		}
	}
	c.log.Info().
		Str("codigo_generacion", envio.CodigoGeneracion).
		Str("sello", datos.SelloRecibido).
		Msg("DTE procesado por MH")
	return datos.SelloRecibido, nil
}

// InvalidarDTE transmite el evento de invalidación (anulacion-schema-v2).
func (c *Client) InvalidarDTE(ctx context.Context, empresa *entity.Empresa, envio facturacion.EnvioEvento) error {
	token, err := c.Autenticar(ctx, empresa)
	if err != nil {
		return err
	}

	envelope := map[string]any{
		"ambiente":         entity.CodigoAmbienteDTE(empresa.Ambiente),
		"idEnvio":          1,
		"version":          2,
		"tipoDte":          envio.TipoDTE,
		"tipoEvento":       "invalidacion",
		"documento":        envio.Documento,
		"codigoGeneracion": strings.ToUpper(envio.CodigoGeneracion),
	}
	datos, err := c.transmitir(ctx, token, c.endpoints(empresa).Anular, envelope)
	if err != nil {
		return err
	}

	if datos.Estado != "PROCESADO" {
		return &domain.RechazoMH{
			Codigo:        datos.CodigoMsg,
			Descripcion:   oMensaje(datos.DescripcionMsg),
			Observaciones: datos.Observaciones,
		}
	}
	c.log.Info().
		Str("codigo_generacion", envio.CodigoGeneracion).
		Msg("evento de invalidación procesado por MH")
	return nil
}

func (c *Client) transmitir(ctx context.Context, token, endpoint string, envelope map[string]any) (*respuestaMH, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("mh: serializando envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mh: armando petición: %w", err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mh: %w: %v", domain.ErrEnvioTransitorio, err)
	}
	defer resp.Body.Close()
	cuerpo, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// sigue abajo
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("mh: %w: HTTP %d", domain.ErrEnvioTransitorio, resp.StatusCode)
	default:
		// un 4xx con cuerpo de rechazo trae el motivo; si no, va el texto crudo
		var datos respuestaMH
		if json.Unmarshal(cuerpo, &datos) == nil && datos.DescripcionMsg != "" {
			return &datos, nil
		}
		return nil, &domain.RechazoMH{
			Codigo:      fmt.Sprintf("HTTP-%d", resp.StatusCode),
			Descripcion: resumenCuerpo(cuerpo),
		}
	}

	var datos respuestaMH
	if err := json.Unmarshal(cuerpo, &datos); err != nil {
		return nil, fmt.Errorf("mh: %w: respuesta no es JSON: %v", domain.ErrEnvioTransitorio, err)
	}
	return &datos, nil
}

func oMensaje(s string) string {
	if s == "" {
		return "sin mensaje"
	}
	return s
}

func resumenCuerpo(cuerpo []byte) string {
	s := strings.TrimSpace(string(cuerpo))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
