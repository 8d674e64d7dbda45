package database

const migration001Up = `
CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    email VARCHAR(254),
    github_username VARCHAR(100),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    last_name_normalized VARCHAR(100) NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_students_roster_order ON students(last_name_normalized, first_name);
CREATE INDEX IF NOT EXISTS idx_students_active ON students(is_active);

CREATE TABLE IF NOT EXISTS attendance_sessions (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL UNIQUE,
    description VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS attendance_records (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    session_id BIGINT NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
    is_present BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    UNIQUE(student_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_records_session ON attendance_records(session_id);
`

const migration001Down = `
DROP TABLE IF EXISTS attendance_records;
DROP TABLE IF EXISTS attendance_sessions;
DROP TABLE IF EXISTS students;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS competencies (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS student_competencies (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    competency_id BIGINT NOT NULL REFERENCES competencies(id) ON DELETE CASCADE,
    is_achieved BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    UNIQUE(student_id, competency_id)
);

CREATE INDEX IF NOT EXISTS idx_student_competencies_student ON student_competencies(student_id);
`

const migration002Down = `
DROP TABLE IF EXISTS student_competencies;
DROP TABLE IF EXISTS competencies;
`

const migration003Up = `
INSERT INTO competencies (display_order, name, description) VALUES
    (1, 'Estadística', 'Conocimientos fundamentales de estadística descriptiva e inferencial'),
    (2, 'Regresión Logística', 'Comprensión y aplicación de modelos de regresión logística'),
    (3, 'Regresión Lineal', 'Comprensión y aplicación de modelos de regresión lineal'),
    (4, 'Máquina de Soporte Vectorial', 'Conocimiento de SVM para clasificación y regresión'),
    (5, 'Clustering', 'Técnicas de agrupamiento y análisis de clusters'),
    (6, 'TSNE', 'Reducción de dimensionalidad con t-SNE'),
    (7, 'VHTSNE', 'Variantes y optimizaciones de t-SNE'),
    (8, 'UMAP', 'Reducción de dimensionalidad con UMAP'),
    (9, 'Kernels', 'Comprensión de funciones kernel y su aplicación'),
    (10, 'DBSCAN', 'Clustering basado en densidad con DBSCAN')
ON CONFLICT (name) DO NOTHING;
`

const migration003Down = `
DELETE FROM competencies WHERE name IN (
    'Estadística', 'Regresión Logística', 'Regresión Lineal', 'Máquina de Soporte Vectorial',
    'Clustering', 'TSNE', 'VHTSNE', 'UMAP', 'Kernels', 'DBSCAN'
);
`

// Migrations returns the embedded schema migrations in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_attendance", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_competencies", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "seed_competencies", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}
