package kafka

// SCRAM client for sarama's SASL handshake, built on xdg-go/scram
// (the approach sarama's own sasl_scram_client example takes).

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/xdg-go/scram"
)

var (
	// SHA256 generates hashes for SCRAM-SHA-256 authentication.
	SHA256 scram.HashGeneratorFcn = sha256.New
	// SHA512 generates hashes for SCRAM-SHA-512 authentication.
	SHA512 scram.HashGeneratorFcn = sha512.New
)

// XDGSCRAMClient adapts an xdg-go/scram conversation to the
// sarama.SCRAMClient interface.
type XDGSCRAMClient struct {
	*scram.Client
	*scram.ClientConversation
	scram.HashGeneratorFcn
}

// Begin starts a SCRAM conversation for the given credentials.
func (x *XDGSCRAMClient) Begin(userName, password, authzID string) (err error) {
	x.Client, err = x.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	x.ClientConversation = x.NewConversation()
	return nil
}

// Step answers one server challenge.
func (x *XDGSCRAMClient) Step(challenge string) (string, error) {
	return x.ClientConversation.Step(challenge)
}

// Done reports whether the conversation has finished.
func (x *XDGSCRAMClient) Done() bool {
	return x.ClientConversation.Done()
}
