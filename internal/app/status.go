package app

import (
	"github.com/nhle/mailterm/internal/route"
	"github.com/nhle/mailterm/internal/theme"
)

// renderStatusBar shows the pending alert, or the key hints of the
// current screen.
func (m Model) renderStatusBar() string {
	if m.alert.Text != "" {
		style := theme.AlertStyle
		if m.alert.Error {
			style = theme.ErrorAlertStyle
		}
		return m.layout.RenderStatusBar(style, m.alert.Text)
	}
	return m.layout.RenderStatusBar(theme.StatusBarStyle, m.keyHints())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case OverlayHelp:
		return "? fechar ajuda | esc voltar"
	case OverlayCommand:
		return "enter executar | esc fechar"
	}

	switch m.res.Screen {
	case route.ScreenLogin:
		return "enter entrar | ctrl+n criar conta | ctrl+c sair"
	case route.ScreenSignup:
		return "enter cadastrar | esc voltar | ctrl+c sair"
	case route.ScreenCompose, route.ScreenAccount:
		return "tab próximo campo | enter confirmar | esc voltar"
	case route.ScreenRead:
		if m.screen != nil && m.screen.Capturing() {
			return "enter enviar resposta | esc cancelar"
		}
		return "R responder | j/k rolar | esc voltar | L sair da conta"
	default:
		return "q fechar | ? ajuda | : comandos | enter abrir | r atualizar | n escrever | L sair da conta"
	}
}
