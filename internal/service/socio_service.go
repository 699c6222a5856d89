package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nycamas/club/internal/dto"
	"github.com/nycamas/club/internal/model"
	"github.com/nycamas/club/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUsernameDuplicado = errors.New("ya existe un usuario con ese nombre de usuario")
	ErrYaEsSocio         = errors.New("el usuario ya es socio")
)

// SocioService registers club members and keeps their profile.
type SocioService interface {
	// Alta creates the user; members get the next S{año}-{NNNN} number.
	Alta(ctx context.Context, req dto.AltaSocioRequest) (dto.SocioResponse, error)
	// HacerSocio turns an existing non-member user into a member.
	HacerSocio(ctx context.Context, id uuid.UUID) (dto.SocioResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (dto.SocioResponse, error)
	Listar(ctx context.Context, filter dto.SocioFilter) ([]dto.SocioResponse, int64, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSocioRequest) (dto.SocioResponse, error)
	// Baja is the logical delete; the member number stays reserved.
	Baja(ctx context.Context, id uuid.UUID) error
	EliminarDefinitivo(ctx context.Context, id uuid.UUID) error
}

type socioService struct {
	repo  repository.SocioRepository
	reloj Reloj
}

func NewSocioService(repo repository.SocioRepository, reloj Reloj) SocioService {
	return &socioService{repo: repo, reloj: reloj}
}

func mapSocio(u model.Usuario) dto.SocioResponse {
	return dto.SocioResponse{
		ID:             u.ID,
		Username:       u.Username,
		NombreCompleto: u.NombreCompleto(),
		Email:          u.Email,
		EsSocio:        u.EsSocio,
		NumeroSocio:    u.NumeroSocio,
		FechaAlta:      u.FechaAlta,
		Activo:         u.Activo,
	}
}

func preferenciasJSON(p map[string]any) (datatypes.JSON, error) {
	if p == nil {
		return datatypes.JSON("{}"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("preferencias: %w", err)
	}
	return datatypes.JSON(b), nil
}

// asignarNumeroTx draws the next member number of the current year.
func (s *socioService) asignarNumeroTx(ctx context.Context, tx *gorm.DB, u *model.Usuario) error {
	hoy := model.Dia(s.reloj.ahora())
	n, err := s.repo.SiguienteNumeroTx(ctx, tx, hoy.Year())
	if err != nil {
		return fmt.Errorf("numero de socio: %w", err)
	}
	numero := model.FormatearNumeroSocio(hoy.Year(), n)
	u.EsSocio = true
	u.NumeroSocio = &numero
	u.FechaAlta = &hoy
	return nil
}

func (s *socioService) Alta(ctx context.Context, req dto.AltaSocioRequest) (dto.SocioResponse, error) {
	if err := validar(req); err != nil {
		return dto.SocioResponse{}, err
	}
	prefs, err := preferenciasJSON(req.Preferencias)
	if err != nil {
		return dto.SocioResponse{}, err
	}

	u := &model.Usuario{
		Base:                  model.Base{Activo: true},
		Username:              req.Username,
		Nombre:                req.Nombre,
		Apellido:              req.Apellido,
		Email:                 req.Email,
		DNI:                   req.DNI,
		FechaNacimiento:       req.FechaNacimiento,
		Telefono:              req.Telefono,
		Direccion:             req.Direccion,
		CodigoPostal:          req.CodigoPostal,
		Ciudad:                req.Ciudad,
		Provincia:             req.Provincia,
		Pais:                  req.Pais,
		RecibirNotificaciones: true,
		Preferencias:          prefs,
	}
	if req.RecibirNotificaciones != nil {
		u.RecibirNotificaciones = *req.RecibirNotificaciones
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.EsSocio {
			if err := s.asignarNumeroTx(ctx, tx, u); err != nil {
				return err
			}
		}
		return s.repo.Crear(ctx, tx, u)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return dto.SocioResponse{}, ErrUsernameDuplicado
		}
		return dto.SocioResponse{}, err
	}
	return mapSocio(*u), nil
}

func (s *socioService) obtener(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrSocioNoEncontrado
		}
		return nil, err
	}
	return u, nil
}

func (s *socioService) HacerSocio(ctx context.Context, id uuid.UUID) (dto.SocioResponse, error) {
	u, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SocioResponse{}, err
	}
	if u.EsSocio && u.NumeroSocio != nil {
		return dto.SocioResponse{}, ErrYaEsSocio
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.asignarNumeroTx(ctx, tx, u); err != nil {
			return err
		}
		return s.repo.Actualizar(ctx, u)
	})
	if err != nil {
		return dto.SocioResponse{}, err
	}
	return mapSocio(*u), nil
}

func (s *socioService) Obtener(ctx context.Context, id uuid.UUID) (dto.SocioResponse, error) {
	u, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SocioResponse{}, err
	}
	return mapSocio(*u), nil
}

func (s *socioService) Listar(ctx context.Context, filter dto.SocioFilter) ([]dto.SocioResponse, int64, error) {
	list, total, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SocioResponse, 0, len(list))
	for _, u := range list {
		out = append(out, mapSocio(u))
	}
	return out, total, nil
}

func (s *socioService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSocioRequest) (dto.SocioResponse, error) {
	if err := validar(req); err != nil {
		return dto.SocioResponse{}, err
	}
	u, err := s.obtener(ctx, id)
	if err != nil {
		return dto.SocioResponse{}, err
	}
	if req.Nombre != nil {
		u.Nombre = *req.Nombre
	}
	if req.Apellido != nil {
		u.Apellido = *req.Apellido
	}
	if req.Email != nil {
		u.Email = req.Email
	}
	if req.Telefono != nil {
		u.Telefono = *req.Telefono
	}
	if req.Direccion != nil {
		u.Direccion = *req.Direccion
	}
	if req.RecibirNotificaciones != nil {
		u.RecibirNotificaciones = *req.RecibirNotificaciones
	}
	if req.Preferencias != nil {
		prefs, err := preferenciasJSON(req.Preferencias)
		if err != nil {
			return dto.SocioResponse{}, err
		}
		u.Preferencias = prefs
	}
	if err := s.repo.Actualizar(ctx, u); err != nil {
		return dto.SocioResponse{}, err
	}
	return mapSocio(*u), nil
}

func (s *socioService) Baja(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Eliminar(ctx, &model.Usuario{}, id); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrSocioNoEncontrado
		}
		return err
	}
	return nil
}

func (s *socioService) EliminarDefinitivo(ctx context.Context, id uuid.UUID) error {
	return s.repo.EliminarDefinitivo(ctx, &model.Usuario{}, id)
}
