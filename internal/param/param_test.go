package param

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnvFetcher(t *testing.T) {
	f := &EnvFetcher{Lookup: func(key string) (string, bool) {
		switch key {
		case "SET":
			return "secret", true
		case "EMPTY":
			return "", true
		}
		return "", false
	}}
	ctx := context.Background()

	v, err := f.Fetch(ctx, "SET")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	_, err = f.Fetch(ctx, "EMPTY")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, "UNSET")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnvFetcherReadsAtCallTime(t *testing.T) {
	f := NewEnvFetcher()
	t.Setenv("IMAGENPROXY_TEST_PARAM", "")
	_, err := f.Fetch(context.Background(), "IMAGENPROXY_TEST_PARAM")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Setenv("IMAGENPROXY_TEST_PARAM", "late")
	v, err := f.Fetch(context.Background(), "IMAGENPROXY_TEST_PARAM")
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}

type mockSSM struct {
	mock.Mock
}

func (m *mockSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(aws.ToString(in.Name), aws.ToBool(in.WithDecryption))
	out, _ := args.Get(0).(*ssm.GetParameterOutput)
	return out, args.Error(1)
}

func TestParameterStoreFetcher(t *testing.T) {
	client := &mockSSM{}
	client.On("GetParameter", "/imagen/key", true).Return(&ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("from-ssm")},
	}, nil)
	client.On("GetParameter", "/imagen/missing", true).Return(nil, &types.ParameterNotFound{})
	client.On("GetParameter", "/imagen/broken", true).Return(nil, errors.New("access denied"))

	f := &ParameterStoreFetcher{client: client}
	ctx := context.Background()

	v, err := f.Fetch(ctx, "/imagen/key")
	require.NoError(t, err)
	assert.Equal(t, "from-ssm", v)

	_, err = f.Fetch(ctx, "/imagen/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, "/imagen/broken")
	assert.EqualError(t, err, "access denied")

	client.AssertExpectations(t)
}
