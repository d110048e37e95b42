package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "5511987654321"},
		{"11 3456-7890", "551134567890"},
		{"+55 11 98765-4321", "5511987654321"},
		{"5511987654321", "5511987654321"},
		{"98765-4321", "987654321"}, // too short for an area code, left as-is
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CleanPhone(tc.in), "input %q", tc.in)
	}
}

func TestFormatBRL(t *testing.T) {
	require.Equal(t, "R$ 400,00", formatBRL(40000))
	require.Equal(t, "R$ 0,05", formatBRL(5))
	require.Equal(t, "R$ 1234,56", formatBRL(123456))
}

func TestPixPayloadCarriesAmountAndKey(t *testing.T) {
	got := pixPayload("pagamentos@conexao.example", "tx-123", 40050)
	require.Contains(t, got, "key=pagamentos@conexao.example")
	require.Contains(t, got, "amount=400.50")
	require.Contains(t, got, "txid=tx-123")
}
