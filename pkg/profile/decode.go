package profile

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

const (
	fieldUsername    = "username"
	fieldTotalFans   = "total_fans"
	fieldTotalVideos = "total_videos"
)

// decodeProfile projects the user-info envelope {"data": {...}} onto a ProfileRecord.
// Unknown fields at either level are ignored.
func decodeProfile(body []byte) (domain.ProfileRecord, error) {
	if !json.Valid(body) {
		return domain.ProfileRecord{}, decodeError(ReasonInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return domain.ProfileRecord{}, decodeError(ReasonInvalidJSON)
	}

	envelope, ok := root.(map[string]any)
	if !ok {
		return domain.ProfileRecord{}, decodeError(ReasonMissingData)
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		return domain.ProfileRecord{}, decodeError(ReasonMissingData)
	}

	username, ok := data[fieldUsername].(string)
	if !ok {
		return domain.ProfileRecord{}, fieldError(fieldUsername)
	}
	fans, err := int32Field(data, fieldTotalFans, ReasonFanCountRange)
	if err != nil {
		return domain.ProfileRecord{}, err
	}
	videos, err := int32Field(data, fieldTotalVideos, ReasonVideoCountRange)
	if err != nil {
		return domain.ProfileRecord{}, err
	}

	return domain.ProfileRecord{
		Username:    username,
		TotalFans:   fans,
		TotalVideos: videos,
	}, nil
}

// int32Field reads an integral JSON number that must fit in int64 and then in int32.
func int32Field(data map[string]any, field, rangeReason string) (int32, error) {
	num, ok := data[field].(json.Number)
	if !ok {
		return 0, fieldError(field)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fieldError(field)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, rangeError(field, rangeReason)
	}
	return int32(n), nil
}
