package agenda

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// RenderCSV flattens the view into one row per event occurrence, one group
// of rows per bucket date.
func RenderCSV(view View) (string, error) {
	data := make([][]string, 0, 1+len(view.Buckets))
	data = append(data, []string{"date", "start", "end", "name", "description", "feedId"})

	for _, bucket := range view.Buckets {
		date := bucket.Date.Format("2006-01-02")
		for _, e := range bucket.Events {
			data = append(data, []string{
				date,
				e.StartTime.Format("2006-01-02 15:04"),
				e.EndTime.Format("2006-01-02 15:04"),
				e.Name,
				e.Description,
				strconv.Itoa(e.FeedID),
			})
		}
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
