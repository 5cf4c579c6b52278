package custody

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SolanaSigner submits prepared Solana transactions through the custody
// signer, which re-signs them with the custody key after refreshing the
// blockhash.
type SolanaSigner struct {
	client  *Client
	address solana.PublicKey
}

func NewSolanaSigner(client *Client, custodyAddress string) (*SolanaSigner, error) {
	address, err := solana.PublicKeyFromBase58(custodyAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid solana custody address %q: %w", custodyAddress, err)
	}
	return &SolanaSigner{client: client, address: address}, nil
}

func (s *SolanaSigner) CustodyAddress() solana.PublicKey {
	return s.address
}

type solanaSubmitRequest struct {
	Transaction string `json:"transaction"`
}

type solanaSubmitResponse struct {
	Signature string `json:"signature"`
}

func (s *SolanaSigner) SignAndSubmit(ctx context.Context, tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize solana transaction: %w", err)
	}

	var resp solanaSubmitResponse
	err = s.client.post(ctx, "/v1/solana/sign-and-submit", solanaSubmitRequest{
		Transaction: base64.StdEncoding.EncodeToString(raw),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Signature, nil
}
