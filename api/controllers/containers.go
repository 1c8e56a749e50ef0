package controllers

import (
	"net/http"

	"github.com/angelmondragon/gridstock/api/responses"
	"github.com/angelmondragon/gridstock/api/validators"
	"github.com/angelmondragon/gridstock/internal/containers"
	"github.com/angelmondragon/gridstock/internal/items"
	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
	"github.com/angelmondragon/gridstock/pkg/logger"
	"github.com/angelmondragon/gridstock/pkg/types"
)

const (
	containerIDParam = "containerId"
	maxGridIndex     = 10000
)

func ListContainers(svc containers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "container service unavailable"))
			return
		}
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetContainer(svc containers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		container, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, container)
	}
}

func CreateContainer(svc containers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload containers.CreateContainerInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		container, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, container)
	}
}

func UpdateContainer(svc containers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload containers.UpdateContainerInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		container, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, container)
	}
}

func DeleteContainer(svc containers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ListContainerItems(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByContainer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ContainerGrid(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Grid(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ContainerOccupiedCells(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cells, err := svc.OccupiedCells(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cells)
	}
}

// ContainerCell reports the item at ?row=&column=, or null for a free cell.
func ContainerCell(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, containerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := validators.ParseQueryInt(r, "row", -1, 0, maxGridIndex)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		column, err := validators.ParseQueryInt(r, "column", -1, 0, maxGridIndex)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if row < 0 || column < 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "row and column are required"))
			return
		}
		item, err := svc.ItemAt(r.Context(), id, types.Position{Row: row, Column: column})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
