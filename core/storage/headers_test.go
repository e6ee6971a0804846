package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	encodedName = "R%C3%83%C2%A9capitulatif%20des%20quantit%C3%83%C2%A9s%20sa"
	encodedDesc = "R%C3%83%C2%A9capitulatif%20des%20quantit%C3%83%C2%A9s%20saisies%20par%20%C3%83%C2%A9l%C3%83%C2%A9ment%20de%20repas%20dans%20chaque%20trame%20de%20menu%20par%20site"
	odsType     = "application/vnd.oasis.opendocument.spreadsheet"
)

func TestConvertHeaders(t *testing.T) {
	t.Run("SwiftToS3", func(t *testing.T) {
		in := map[string]string{
			"x-object-meta-name":     "custom name",
			"x-object-meta-custom-2": "custom attribute not supported",
		}
		assert.Equal(t, map[string]string{
			"x-amz-meta-name":     "custom%20name",
			"x-amz-meta-custom-2": "custom%20attribute%20not%20supported",
		}, ConvertHeaders(in, KindSwift, KindS3))
	})

	t.Run("RoundTripDropsTransportHeaders", func(t *testing.T) {
		swiftHeaders := map[string]string{
			"content-length":         "31078",
			"x-object-meta-name":     "RÃ©capitulatif des quantitÃ©s sa",
			"x-object-meta-desc":     "RÃ©capitulatif des quantitÃ©s saisies par Ã©lÃ©ment de repas dans chaque trame de menu par site",
			"last-modified":          "Thu, 23 Feb 2023 01:14:34 GMT",
			"accept-ranges":          "bytes",
			"etag":                   "84f955aea2728719fdeca60fbcb98494",
			"x-timestamp":            "1677114873.57139",
			"content-type":           odsType,
			"x-trans-id":             "txf38b8c7f1a5945b2b93c8-0064520f5f",
			"x-openstack-request-id": "txf38b8c7f1a5945b2b93c8-0064520f5f",
		}
		s3Headers := map[string]string{
			"x-amz-meta-name": encodedName,
			"x-amz-meta-desc": encodedDesc,
			"content-type":    odsType,
		}
		assert.Equal(t, s3Headers, ConvertHeaders(swiftHeaders, KindSwift, KindS3))
		assert.Equal(t, map[string]string{
			"x-object-meta-name": encodedName,
			"x-object-meta-desc": encodedDesc,
			"content-type":       odsType,
		}, ConvertHeaders(s3Headers, KindS3, KindSwift))
	})

	t.Run("SameKindIsStable", func(t *testing.T) {
		s3Headers := map[string]string{
			"x-amz-meta-name": encodedName,
			"content-type":    odsType,
		}
		assert.Equal(t, s3Headers, ConvertHeaders(s3Headers, KindS3, KindS3))
		assert.Equal(t, s3Headers, ConvertHeaders(s3Headers, KindS3, KindAWS))

		swiftHeaders := map[string]string{
			"x-object-meta-desc": encodedDesc,
			"content-type":       odsType,
		}
		assert.Equal(t, swiftHeaders, ConvertHeaders(swiftHeaders, KindSwift, KindSwift))
	})

	t.Run("MalformedEncodingPassesThrough", func(t *testing.T) {
		in := map[string]string{"x-amz-meta-name": "R%C3%83%C2%A9capitulatif%20des%20quantit%C"}
		assert.Equal(t, map[string]string{
			"x-object-meta-name": "R%C3%83%C2%A9capitulatif%20des%20quantit%C",
		}, ConvertHeaders(in, KindS3, KindSwift))
	})

	t.Run("MixedCaseKeys", func(t *testing.T) {
		in := map[string]string{"X-Object-Meta-Owner": "ops", "Content-Type": "text/plain"}
		assert.Equal(t, map[string]string{
			"x-amz-meta-owner": "ops",
			"content-type":     "text/plain",
		}, ConvertHeaders(in, KindSwift, KindAWS))
	})
}

func TestEncodeMetaValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"it's (fine)!*", "it's%20(fine)!*"},
		{"already%20encoded", "already%20encoded"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeMetaValue(tt.in))
		})
	}
}

func TestChunkKeys(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = "k"
	}
	chunks := chunkKeys(keys, MaxDeleteBatch)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 500)
	assert.Empty(t, chunkKeys(nil, MaxDeleteBatch))
}

func TestVerify(t *testing.T) {
	body := []byte("hello")
	sum := md5Hex(body)

	assert.NoError(t, verify("a", body, `"`+sum+`"`))
	assert.NoError(t, verify("a", body, ""))

	err := verify("a", body, "deadbeef")
	assert.ErrorIs(t, err, ErrIntegrity)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
	assert.Equal(t, sum, ie.Actual)
}
