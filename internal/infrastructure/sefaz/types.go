package sefaz

import "encoding/xml"

// Status codes returned by the distribution and event services
const (
	statusNoDocuments     = "137"
	statusDocumentsFound  = "138"
	statusEventRegistered = "135"
)

// Event type codes for manifestação do destinatário
const (
	eventCodeConfirmacao     = "210200"
	eventCodeCiencia         = "210210"
	eventCodeDesconhecimento = "210220"
	eventCodeNaoRealizada    = "210240"
)

// distDFeRequest is the body of a distribution query
type distDFeRequest struct {
	XMLName  xml.Name `xml:"distDFeInt"`
	Version  string   `xml:"versao,attr"`
	TpAmb    string   `xml:"tpAmb"`
	CUFAutor string   `xml:"cUFAutor"`
	CNPJ     string   `xml:"CNPJ"`
	UltNSU   string   `xml:"distNSU>ultNSU"`
}

// distDFeResponse is the envelope returned by the distribution service
type distDFeResponse struct {
	XMLName xml.Name    `xml:"retDistDFeInt"`
	CStat   string      `xml:"cStat"`
	XMotivo string      `xml:"xMotivo"`
	UltNSU  string      `xml:"ultNSU"`
	MaxNSU  string      `xml:"maxNSU"`
	DocZips []docZipElm `xml:"loteDistDFeInt>docZip"`
}

// docZipElm carries one gzip+base64 document payload
type docZipElm struct {
	NSU     string `xml:"NSU,attr"`
	Schema  string `xml:"schema,attr"`
	Content string `xml:",chardata"`
}

// resNFe is the summary payload distributed before a full document
type resNFe struct {
	XMLName xml.Name `xml:"resNFe"`
	ChNFe   string   `xml:"chNFe"`
	XNome   string   `xml:"xNome"`
}

// procNFeSummary extracts just the identification fields from a full
// distributed document
type procNFeSummary struct {
	XMLName xml.Name `xml:"nfeProc"`
	InfNFe  struct {
		ID   string `xml:"Id,attr"`
		Emit struct {
			XNome string `xml:"xNome"`
		} `xml:"emit"`
	} `xml:"NFe>infNFe"`
}

// eventRequest is the body of a manifestation submission
type eventRequest struct {
	XMLName   xml.Name `xml:"envEvento"`
	Version   string   `xml:"versao,attr"`
	IDLote    string   `xml:"idLote"`
	InfEvento struct {
		TpAmb    string `xml:"tpAmb"`
		CNPJ     string `xml:"CNPJ"`
		ChNFe    string `xml:"chNFe"`
		TpEvento string `xml:"tpEvento"`
		XJust    string `xml:"detEvento>xJust,omitempty"`
	} `xml:"evento>infEvento"`
}

// eventResponse is the registration result for one submitted event
type eventResponse struct {
	XMLName   xml.Name `xml:"retEnvEvento"`
	CStat     string   `xml:"cStat"`
	XMotivo   string   `xml:"xMotivo"`
	RetEvento struct {
		CStat       string `xml:"infEvento>cStat"`
		XMotivo     string `xml:"infEvento>xMotivo"`
		NProt       string `xml:"infEvento>nProt"`
		DhRegEvento string `xml:"infEvento>dhRegEvento"`
	} `xml:"retEvento"`
}
