package distribution

import (
	"context"
)

// DistributionDocument is one candidate document returned by the feed
type DistributionDocument struct {
	NSU          int64
	AccessKey    string
	SupplierName string
	RawXML       string
	Schema       string // resNFe (summary) or procNFe (full document)
}

// DistributionBatch is the result of one feed query
type DistributionBatch struct {
	Documents []DistributionDocument
	MaxNSU    int64 // highest NSU known to the service
	LastNSU   int64 // highest NSU included in this batch
}

// ManifestationReceipt is the government acknowledgement of a submission
type ManifestationReceipt struct {
	ProtocolNumber string
	ProcessedAt    string
}

// SefazGateway is the request/response interface to the government
// distribution and manifestation services. Implementations live in
// infrastructure; failures surface verbatim and never mutate local state.
type SefazGateway interface {
	// QueryDistribution fetches documents issued against the receiver CNPJ
	// after the given NSU
	QueryDistribution(ctx context.Context, receiverCNPJ string, lastNSU int64) (*DistributionBatch, error)
	// SubmitManifestation submits one acknowledgement event for an access key
	SubmitManifestation(ctx context.Context, receiverCNPJ, accessKey string, eventType ManifestationEventType, justification string) (*ManifestationReceipt, error)
}
