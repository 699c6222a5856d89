package model

import "time"

// Dia truncates t to its calendar date. Calendar fields (fecha_inicio,
// fecha_fin, ...) are compared as civil dates regardless of the zone the
// driver returned them in, so the result is always anchored at UTC midnight.
func Dia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DiasEntre returns the number of whole days from a to b (negative if b is before a).
func DiasEntre(a, b time.Time) int {
	return int(Dia(b).Sub(Dia(a)).Hours() / 24)
}

// SumarMeses adds n calendar months to t. Month overflow carries into the
// year and the day is clamped to the last day of the target month
// (2024-01-31 + 1 month = 2024-02-29).
func SumarMeses(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	anio := y + total/12
	mes := total % 12
	if mes < 0 {
		mes += 12
		anio--
	}
	ultimo := time.Date(anio, time.Month(mes+2), 0, 0, 0, 0, 0, time.UTC).Day()
	if d > ultimo {
		d = ultimo
	}
	return time.Date(anio, time.Month(mes+1), d, 0, 0, 0, 0, time.UTC)
}
