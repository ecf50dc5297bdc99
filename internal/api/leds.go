package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledcontroller/internal/api/models"
)

func (s *Server) registerLEDRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "List LEDs",
		Description: "List the sysfs LEDs currently bridged onto the bus, sorted by object path",
		Tags:        []string{"leds"},
	}, func(ctx context.Context, input *struct{}) (*models.LEDListResponse, error) {
		leds := []models.LEDData{}
		if s.bridges != nil {
			for _, info := range s.bridges.Bridges() {
				leds = append(leds, models.LEDData{
					Name:      info.Name,
					Path:      info.Path,
					SysfsPath: info.SysfsPath,
					Color:     info.Color,
					State:     info.State,
				})
			}
		}

		return &models.LEDListResponse{
			Body: models.LEDListData{
				LEDs:  leds,
				Count: len(leds),
			},
		}, nil
	})
}
