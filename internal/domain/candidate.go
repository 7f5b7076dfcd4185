package domain

// RegistryHit is one raw search result from the corporations registry,
// prior to address enrichment. Hits without a registration index cannot
// be enriched and are dropped by the fetcher.
type RegistryHit struct {
	RegistrationIndex string
	Name              string
}

// Candidate is a registry hit enriched with its mailing address, proposed
// as a possible identity match for an input record. Address is empty when
// the detail lookup failed or the registry holds no street address; such
// candidates still participate in name matching.
type Candidate struct {
	Name    string
	Address string
}
