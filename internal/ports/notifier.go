package ports

// Notifier muestra notificaciones transitorias al usuario. Ningún error de
// esta capa es fatal: todo degrada a un aviso visible y descartable.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}
