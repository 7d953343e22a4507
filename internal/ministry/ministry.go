// Package ministry is the boundary to the Ministry of Economy farmer and
// product registry. Only a placeholder implementation exists until the
// registry API is available.
package ministry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var ErrInvalidNationalID = errors.New("national id is required")

type Farmer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	NationalID       string    `json:"nationalId"`
	FarmLocation     string    `json:"farmLocation"`
	Certified        bool      `json:"certified"`
	RegistrationDate time.Time `json:"registrationDate"`
}

type Product struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Price             float64 `json:"price"`
	Unit              string  `json:"unit"`
	OriginCertificate string  `json:"originCertificate"`
	SubsidyEligible   bool    `json:"subsidyEligible"`
}

type Authority interface {
	// VerifyFarmer returns nil, nil when the registry has no such farmer.
	VerifyFarmer(ctx context.Context, nationalID string) (*Farmer, error)
	RegisterProduct(ctx context.Context, p Product) (string, error)
	CheckSubsidyEligibility(ctx context.Context, productID string) (bool, error)
}

const certAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Placeholder answers without contacting anyone: no farmer is ever found,
// registration issues a random CERT- number and eligibility is a coin flip.
type Placeholder struct {
	log *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPlaceholder(logger *slog.Logger, seed uint64) *Placeholder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placeholder{
		log: logger.With("component", "ministry"),
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (p *Placeholder) VerifyFarmer(ctx context.Context, nationalID string) (*Farmer, error) {
	if strings.TrimSpace(nationalID) == "" {
		return nil, ErrInvalidNationalID
	}
	p.log.InfoContext(ctx, "ministry_verify_placeholder", "national_id", nationalID)
	return nil, nil
}

func (p *Placeholder) RegisterProduct(ctx context.Context, prod Product) (string, error) {
	p.mu.Lock()
	b := make([]byte, 9)
	for i := range b {
		b[i] = certAlphabet[p.rnd.IntN(len(certAlphabet))]
	}
	p.mu.Unlock()

	cert := "CERT-" + string(b)
	p.log.InfoContext(ctx, "ministry_register_placeholder", "product_id", prod.ID, "certificate", cert)
	return cert, nil
}

func (p *Placeholder) CheckSubsidyEligibility(_ context.Context, _ string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Float64() > 0.5, nil
}
