// Package nodetype defines the closed set of node types a diagram may use.
//
// Each supported type is one [Kind] value. [Resolve] maps a type name, matched
// case-insensitively, to its Kind; there is no open dispatch, so the supported
// set is statically enumerable through [Kinds] and [Names].
//
//	k, err := nodetype.Resolve("ALB")
//	if err != nil {
//	    // UNSUPPORTED_NODE_TYPE, message lists every supported name
//	}
//	fmt.Println(k, k.Category()) // alb application load balancer
package nodetype

import (
	"strings"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
)

// Kind is a renderable primitive category.
type Kind int

// Supported kinds, in registry order. The zero value is not a valid Kind.
const (
	EC2 Kind = iota + 1
	Lambda
	RDS
	ElastiCache
	DynamoDB
	S3
	ELB
	ALB
	VPC
	CloudWatch
	WAF
	APIGateway
	SQS
	SNS
	FastAPI
)

// Provider groups kinds by the vendor namespace their icons come from.
type Provider string

const (
	ProviderAWS         Provider = "aws"
	ProviderProgramming Provider = "programming"
)

type entry struct {
	name     string
	category string
	provider Provider
	style    Style
}

// registry is indexed by Kind; index 0 is unused.
var registry = [...]entry{
	EC2:         {"ec2", "compute instance", ProviderAWS, styleCompute},
	Lambda:      {"lambda", "serverless function", ProviderAWS, styleCompute},
	RDS:         {"rds", "relational database", ProviderAWS, styleDatabase},
	ElastiCache: {"elasticache", "in-memory cache", ProviderAWS, styleDatabase},
	DynamoDB:    {"dynamodb", "key-value/document store", ProviderAWS, styleDatabase},
	S3:          {"s3", "object storage", ProviderAWS, styleStorage},
	ELB:         {"elb", "classic load balancer", ProviderAWS, styleNetwork},
	ALB:         {"alb", "application load balancer", ProviderAWS, styleNetwork},
	VPC:         {"vpc", "private network container", ProviderAWS, styleNetwork},
	CloudWatch:  {"cloudwatch", "monitoring/observability sink", ProviderAWS, styleManagement},
	WAF:         {"waf", "web firewall", ProviderAWS, styleSecurity},
	APIGateway:  {"apigateway", "API gateway", ProviderAWS, styleNetwork},
	SQS:         {"sqs", "message queue", ProviderAWS, styleIntegration},
	SNS:         {"sns", "pub/sub topic", ProviderAWS, styleIntegration},
	FastAPI:     {"fastapi", "web-framework marker", ProviderProgramming, styleFramework},
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(registry)-1)
	for _, k := range Kinds() {
		m[registry[k].name] = k
	}
	return m
}()

// Kinds returns every supported kind in registry order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry)-1)
	for k := EC2; k <= FastAPI; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Names returns the canonical names of every supported kind in registry order.
func Names() []string {
	names := make([]string, 0, len(registry)-1)
	for _, k := range Kinds() {
		names = append(names, registry[k].name)
	}
	return names
}

// Resolve returns the Kind for name. Matching ignores case and surrounding
// whitespace. Unknown names fail with [errs.ErrCodeUnsupportedNodeType] and a
// message that enumerates all supported names.
func Resolve(name string) (Kind, error) {
	if k, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return 0, errs.New(errs.ErrCodeUnsupportedNodeType,
		"unsupported node type: %q. Available types: %s", name, strings.Join(Names(), ", "))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool { return k >= EC2 && k <= FastAPI }

// String returns the canonical name, or "invalid" for an unknown Kind.
func (k Kind) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return registry[k].name
}

// Category returns the human-readable primitive category.
func (k Kind) Category() string {
	if !k.Valid() {
		return ""
	}
	return registry[k].category
}

// Provider returns the vendor namespace of the kind.
func (k Kind) Provider() Provider {
	if !k.Valid() {
		return ""
	}
	return registry[k].provider
}

// Style returns how nodes of this kind are drawn.
func (k Kind) Style() Style {
	if !k.Valid() {
		return Style{Shape: "box", FillColor: "white"}
	}
	return registry[k].style
}
