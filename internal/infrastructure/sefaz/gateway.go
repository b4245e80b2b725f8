package sefaz

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nfehub/backend/internal/domain/distribution"
)

// maxResponseSize is the maximum allowed response size from SEFAZ (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrUnexpectedStatus indicates the service answered with a status code the
// gateway does not know how to handle
var ErrUnexpectedStatus = errors.New("sefaz: unexpected service status")

// HTTPGateway implements SefazGateway against the national distribution and
// event reception services
type HTTPGateway struct {
	config     *Config
	httpClient *http.Client
}

// NewHTTPGateway creates a gateway with the given configuration
func NewHTTPGateway(config *Config) (*HTTPGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// QueryDistribution fetches the documents distributed against the receiver
// CNPJ after lastNSU
func (g *HTTPGateway) QueryDistribution(ctx context.Context, receiverCNPJ string, lastNSU int64) (*distribution.DistributionBatch, error) {
	request := distDFeRequest{
		Version:  "1.01",
		TpAmb:    g.config.Environment,
		CUFAutor: g.config.UFAuthor,
		CNPJ:     receiverCNPJ,
		UltNSU:   fmt.Sprintf("%015d", lastNSU),
	}

	body, err := g.doRequest(ctx, "/nfedistribuicao", request)
	if err != nil {
		return nil, err
	}

	var resp distDFeResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sefaz: failed to parse distribution response: %w", err)
	}

	switch resp.CStat {
	case statusNoDocuments:
		return &distribution.DistributionBatch{
			Documents: nil,
			MaxNSU:    parseNSU(resp.MaxNSU),
			LastNSU:   parseNSU(resp.UltNSU),
		}, nil
	case statusDocumentsFound:
		// handled below
	default:
		return nil, fmt.Errorf("%w: %s - %s", ErrUnexpectedStatus, resp.CStat, resp.XMotivo)
	}

	batch := &distribution.DistributionBatch{
		Documents: make([]distribution.DistributionDocument, 0, len(resp.DocZips)),
		MaxNSU:    parseNSU(resp.MaxNSU),
		LastNSU:   parseNSU(resp.UltNSU),
	}

	for _, zip := range resp.DocZips {
		doc, err := decodeDocZip(zip)
		if err != nil {
			return nil, fmt.Errorf("sefaz: failed to decode document NSU %s: %w", zip.NSU, err)
		}
		batch.Documents = append(batch.Documents, doc)
	}

	return batch, nil
}

// SubmitManifestation submits one acknowledgement event for an access key
func (g *HTTPGateway) SubmitManifestation(ctx context.Context, receiverCNPJ, accessKey string, eventType distribution.ManifestationEventType, justification string) (*distribution.ManifestationReceipt, error) {
	code, err := eventCode(eventType)
	if err != nil {
		return nil, err
	}

	request := eventRequest{
		Version: "1.00",
		IDLote:  strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	request.InfEvento.TpAmb = g.config.Environment
	request.InfEvento.CNPJ = receiverCNPJ
	request.InfEvento.ChNFe = accessKey
	request.InfEvento.TpEvento = code
	request.InfEvento.XJust = justification

	body, err := g.doRequest(ctx, "/recepcaoevento", request)
	if err != nil {
		return nil, err
	}

	var resp eventResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sefaz: failed to parse event response: %w", err)
	}

	if resp.RetEvento.CStat != statusEventRegistered {
		return nil, fmt.Errorf("%w: %s - %s", ErrUnexpectedStatus, resp.RetEvento.CStat, resp.RetEvento.XMotivo)
	}

	return &distribution.ManifestationReceipt{
		ProtocolNumber: resp.RetEvento.NProt,
		ProcessedAt:    resp.RetEvento.DhRegEvento,
	}, nil
}

func (g *HTTPGateway) doRequest(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := xml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sefaz: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.config.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sefaz: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sefaz: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("sefaz: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sefaz: HTTP %d", resp.StatusCode)
	}

	return respBody, nil
}

// decodeDocZip inflates one base64+gzip payload and extracts the key and
// emitter name from the summary or full document inside
func decodeDocZip(zip docZipElm) (distribution.DistributionDocument, error) {
	doc := distribution.DistributionDocument{
		NSU:    parseNSU(zip.NSU),
		Schema: schemaName(zip.Schema),
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(zip.Content))
	if err != nil {
		return doc, fmt.Errorf("invalid base64 payload: %w", err)
	}

	reader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return doc, fmt.Errorf("invalid gzip payload: %w", err)
	}
	defer reader.Close()

	inflated, err := io.ReadAll(io.LimitReader(reader, maxResponseSize))
	if err != nil {
		return doc, fmt.Errorf("failed to inflate payload: %w", err)
	}
	doc.RawXML = string(inflated)

	if strings.HasPrefix(zip.Schema, "resNFe") {
		var summary resNFe
		if err := xml.Unmarshal(inflated, &summary); err != nil {
			return doc, fmt.Errorf("failed to parse summary: %w", err)
		}
		doc.AccessKey = summary.ChNFe
		doc.SupplierName = summary.XNome
		return doc, nil
	}

	var full procNFeSummary
	if err := xml.Unmarshal(inflated, &full); err != nil {
		return doc, fmt.Errorf("failed to parse document: %w", err)
	}
	// the Id attribute carries the key with an NFe prefix
	doc.AccessKey = strings.TrimPrefix(full.InfNFe.ID, "NFe")
	doc.SupplierName = full.InfNFe.Emit.XNome
	return doc, nil
}

func schemaName(schema string) string {
	if strings.HasPrefix(schema, "resNFe") {
		return "resNFe"
	}
	return "procNFe"
}

func eventCode(eventType distribution.ManifestationEventType) (string, error) {
	switch eventType {
	case distribution.EventConfirmacao:
		return eventCodeConfirmacao, nil
	case distribution.EventCiencia:
		return eventCodeCiencia, nil
	case distribution.EventDesconhecimento:
		return eventCodeDesconhecimento, nil
	case distribution.EventNaoRealizada:
		return eventCodeNaoRealizada, nil
	default:
		return "", fmt.Errorf("sefaz: unknown event type %q", eventType)
	}
}

func parseNSU(value string) int64 {
	nsu, _ := strconv.ParseInt(strings.TrimLeft(strings.TrimSpace(value), "0"), 10, 64)
	return nsu
}

// Ensure HTTPGateway implements SefazGateway
var _ distribution.SefazGateway = (*HTTPGateway)(nil)
