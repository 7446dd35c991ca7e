package rdf

// Vocabulary used by the repository and the mapper.
const (
	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"

	DCTitle = "http://purl.org/dc/terms/title"

	FedoraNS              = "http://fedora.info/definitions/v4/repository#"
	FedoraHasVersion      = FedoraNS + "hasVersion"
	FedoraHasVersionLabel = FedoraNS + "hasVersionLabel"
	FedoraCreated         = FedoraNS + "created"

	LDPNS = "http://www.w3.org/ns/ldp#"

	// MixVersionable marks a resource whose state the repository snapshots.
	MixVersionable = "http://www.jcp.org/jcr/mix/1.0versionable"

	// InfoFedoraPrefix prefixes legacy object identifiers ("info:fedora/<pid>").
	InfoFedoraPrefix = "info:fedora/"

	// ModelPrefix prefixes canonical model class URIs.
	ModelPrefix = InfoFedoraPrefix + "afmodel:"

	HasModel = "info:fedora/fedora-system:def/model#hasModel"
)
