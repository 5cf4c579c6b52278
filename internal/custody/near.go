package custody

import (
	"context"
	"math/big"
)

// NearSigner performs NEAR writes through the custody signer: account
// creation on the top-level registrar and settlement-token transfers out of
// custody.
type NearSigner struct {
	client *Client
}

func NewNearSigner(client *Client) *NearSigner {
	return &NearSigner{client: client}
}

type createAccountRequest struct {
	NewAccountID string `json:"new_account_id"`
	PublicKey    string `json:"public_key"`
	DepositYocto string `json:"deposit_yocto"`
}

func (s *NearSigner) CreateAccount(ctx context.Context, newAccountID, publicKey string, depositYocto *big.Int) (string, error) {
	var resp txResponse
	err := s.client.post(ctx, "/v1/near/create-account", createAccountRequest{
		NewAccountID: newAccountID,
		PublicKey:    publicKey,
		DepositYocto: depositYocto.String(),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TxHash, nil
}

type transferRequest struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

// TransferSettlement registers the receiver for token storage if needed, then
// transfers the settlement amount out of custody; the signer does both or
// neither.
func (s *NearSigner) TransferSettlement(ctx context.Context, depositAddress, amount string) (string, error) {
	var resp txResponse
	err := s.client.post(ctx, "/v1/near/transfer-settlement", transferRequest{
		Receiver: depositAddress,
		Amount:   amount,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TxHash, nil
}
