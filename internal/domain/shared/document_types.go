package shared

// AssetType defines the top-level category of a tracked asset
type AssetType string

const (
	AssetTypeAsset     AssetType = "asset"
	AssetTypeLiability AssetType = "liability"
	AssetTypeInsurance AssetType = "insurance"
)

// AssetStatus defines asset lifecycle states
type AssetStatus string

const (
	AssetStatusActive     AssetStatus = "active"
	AssetStatusInactive   AssetStatus = "inactive"
	AssetStatusPending    AssetStatus = "pending"
	AssetStatusApproved   AssetStatus = "approved"
	AssetStatusRejected   AssetStatus = "rejected"
	AssetStatusExpired    AssetStatus = "expired"
	AssetStatusClaimed    AssetStatus = "claimed"
	AssetStatusMatured    AssetStatus = "matured"
	AssetStatusClosed     AssetStatus = "closed"
	AssetStatusProcessing AssetStatus = "processing"
)

// TransactionStatus defines ingestion outcome states for a transaction record
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusProcessed TransactionStatus = "processed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// DocumentType defines recognized financial document categories
type DocumentType string

const (
	DocumentTypeInvoice             DocumentType = "invoice"
	DocumentTypeReceipt             DocumentType = "receipt"
	DocumentTypeStatement           DocumentType = "statement"
	DocumentTypeTaxDocument         DocumentType = "tax_document"
	DocumentTypeCreditCardStatement DocumentType = "credit_card_statement"
	DocumentTypeBill                DocumentType = "bill"
	DocumentTypeOther               DocumentType = "other"
)

// DocumentKind distinguishes stored originals from processed extraction records
type DocumentKind string

const (
	DocumentKindRawPDF    DocumentKind = "raw_pdf"
	DocumentKindProcessed DocumentKind = "processed"
)

// DocumentStatus defines document record processing states
type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// DocumentSource identifies where a document entered the system
type DocumentSource string

const (
	DocumentSourceGmail  DocumentSource = "gmail"
	DocumentSourceUpload DocumentSource = "upload"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
