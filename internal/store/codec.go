package store

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/examgrid/internal/view"
)

func encodeDatasets(s *Schedule) (schedule, duties []byte, err error) {
	if schedule, err = json.Marshal(s.Schedule); err != nil {
		return nil, nil, fmt.Errorf("encode schedule: %w", err)
	}
	if duties, err = json.Marshal(s.Duties); err != nil {
		return nil, nil, fmt.Errorf("encode duties: %w", err)
	}
	return schedule, duties, nil
}

func decodeDataset(data []byte) (*view.Dataset, error) {
	ds := &view.Dataset{}
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
