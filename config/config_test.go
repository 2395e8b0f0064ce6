package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token-123", cfg.Telegram.BotToken)
	assert.Equal(t, 5*time.Minute, cfg.Download.OperationTimeout)
	assert.Equal(t, 300*time.Second, cfg.Download.DeliveryTimeout)
	assert.Equal(t, 600*time.Second, cfg.Download.MaxVideoDuration)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "downloads.completed", cfg.Kafka.OutcomeTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Courtesy.Messages)
	assert.NotEmpty(t, cfg.Download.TempDir)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("DOWNLOAD_OPERATION_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_OPERATION_TIMEOUT")
}

func TestLoad_JanitorAgeMustExceedOperationTimeout(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("DOWNLOAD_OPERATION_TIMEOUT", "10m")
	t.Setenv("DOWNLOAD_JANITOR_MAX_AGE", "5m")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestParseCourtesy(t *testing.T) {
	tests := []struct {
		name     string
		users    string
		messages string
		want     map[string]string
		wantErr  bool
	}{
		{
			name: "empty",
			want: map[string]string{},
		},
		{
			name:     "zipped by position",
			users:    "@Alice, bob",
			messages: "Hi Alice!,Enjoy the tunes bob",
			want: map[string]string{
				"alice": "Hi Alice!",
				"bob":   "Enjoy the tunes bob",
			},
		},
		{
			name:     "length mismatch",
			users:    "alice,bob",
			messages: "only one",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCourtesy(tt.users, tt.messages)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername(" @Alice "))
	assert.Equal(t, "bob_99", NormalizeUsername("bob_99"))
}
