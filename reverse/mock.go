package reverse

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/mock"
)

// MockCaller is a mock implementation of interfaces.ContractCaller.
type MockCaller struct {
	mock.Mock
}

func (m *MockCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
