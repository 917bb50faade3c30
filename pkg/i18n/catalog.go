package i18n

var english = map[string]string{
	"app.home":               "Home",
	"request.failed":         "Request failed",
	"folder.empty":           "This folder is empty",
	"folder.name_required":   "Folder name cannot be empty",
	"folder.created":         "Folder %q created",
	"upload.summary":         "%d uploaded, %d failed",
	"upload.busy":            "An upload is already in progress",
	"move.success":           "Moved %s",
	"move.failed":            "Move failed: %s",
	"move.into_self":         "A folder cannot be moved into itself",
	"move.into_descendant":   "A folder cannot be moved into one of its subfolders",
	"delete.confirm":         "Delete %s %q? This cannot be undone.",
	"delete.success":         "Deleted %s",
	"download.saved":         "Saved %s",
	"login.success":          "Welcome, %s",
	"logout.success":         "Signed out",
	"register.success":       "Account created",
	"password.changed":       "Password changed",
	"password.mismatch":      "Passwords do not match",
	"password.rule.length":   "At least 8 characters",
	"password.rule.upper":    "An uppercase letter",
	"password.rule.lower":    "A lowercase letter",
	"password.rule.special":  "A special character",
	"stats.storage":          "Storage used",
	"stats.files":            "Files",
	"stats.folders":          "Folders",
	"admin.users":            "Users",
	"admin.role_changed":     "Role of %s changed to %s",
	"admin.password_changed": "Password of %s changed",
	"admin.user_deleted":     "User %s deleted",
	"admin.delete_confirm":   "Delete user %q and all their files?",
	"plugin.updated":         "Plugin %s updated",
	"language.changed":       "Language set to %s",
	"theme.changed":          "Theme set to %s",
	"admin.super_admin":      "The super admin cannot be modified",
	"admin.requires_super":   "Only the super admin can modify admin users",
	"admin.self_delete":      "You cannot delete your own account",
	"admin.unknown_user":     "Unknown user",
	"plugin.invalid":         "Invalid plugin settings: %s",
}

var polish = map[string]string{
	"app.home":               "Strona główna",
	"request.failed":         "Żądanie nie powiodło się",
	"folder.empty":           "Ten folder jest pusty",
	"folder.name_required":   "Nazwa folderu nie może być pusta",
	"folder.created":         "Utworzono folder %q",
	"upload.summary":         "Przesłano: %d, błędy: %d",
	"upload.busy":            "Przesyłanie jest już w toku",
	"move.success":           "Przeniesiono %s",
	"move.failed":            "Nie udało się przenieść: %s",
	"move.into_self":         "Nie można przenieść folderu do niego samego",
	"move.into_descendant":   "Nie można przenieść folderu do jego podfolderu",
	"delete.confirm":         "Usunąć %s %q? Tej operacji nie można cofnąć.",
	"delete.success":         "Usunięto %s",
	"download.saved":         "Zapisano %s",
	"login.success":          "Witaj, %s",
	"logout.success":         "Wylogowano",
	"register.success":       "Konto zostało utworzone",
	"password.changed":       "Hasło zostało zmienione",
	"password.mismatch":      "Hasła nie są takie same",
	"password.rule.length":   "Co najmniej 8 znaków",
	"password.rule.upper":    "Wielka litera",
	"password.rule.lower":    "Mała litera",
	"password.rule.special":  "Znak specjalny",
	"stats.storage":          "Zajęte miejsce",
	"stats.files":            "Pliki",
	"stats.folders":          "Foldery",
	"admin.users":            "Użytkownicy",
	"admin.role_changed":     "Rola użytkownika %s zmieniona na %s",
	"admin.password_changed": "Hasło użytkownika %s zostało zmienione",
	"admin.user_deleted":     "Usunięto użytkownika %s",
	"admin.delete_confirm":   "Usunąć użytkownika %q i wszystkie jego pliki?",
	"plugin.updated":         "Zaktualizowano wtyczkę %s",
	"language.changed":       "Ustawiono język: %s",
	"theme.changed":          "Ustawiono motyw: %s",
	"admin.super_admin":      "Nie można modyfikować superadministratora",
	"admin.requires_super":   "Tylko superadministrator może modyfikować administratorów",
	"admin.self_delete":      "Nie możesz usunąć własnego konta",
	"admin.unknown_user":     "Nieznany użytkownik",
	"plugin.invalid":         "Nieprawidłowe ustawienia wtyczki: %s",
}

var german = map[string]string{
	"app.home":               "Startseite",
	"request.failed":         "Anfrage fehlgeschlagen",
	"folder.empty":           "Dieser Ordner ist leer",
	"folder.name_required":   "Der Ordnername darf nicht leer sein",
	"folder.created":         "Ordner %q erstellt",
	"upload.summary":         "%d hochgeladen, %d fehlgeschlagen",
	"upload.busy":            "Es läuft bereits ein Upload",
	"move.success":           "%s verschoben",
	"move.failed":            "Verschieben fehlgeschlagen: %s",
	"move.into_self":         "Ein Ordner kann nicht in sich selbst verschoben werden",
	"move.into_descendant":   "Ein Ordner kann nicht in einen seiner Unterordner verschoben werden",
	"delete.confirm":         "%s %q löschen? Dies kann nicht rückgängig gemacht werden.",
	"delete.success":         "%s gelöscht",
	"download.saved":         "%s gespeichert",
	"login.success":          "Willkommen, %s",
	"logout.success":         "Abgemeldet",
	"register.success":       "Konto erstellt",
	"password.changed":       "Passwort geändert",
	"password.mismatch":      "Die Passwörter stimmen nicht überein",
	"password.rule.length":   "Mindestens 8 Zeichen",
	"password.rule.upper":    "Ein Großbuchstabe",
	"password.rule.lower":    "Ein Kleinbuchstabe",
	"password.rule.special":  "Ein Sonderzeichen",
	"stats.storage":          "Belegter Speicher",
	"stats.files":            "Dateien",
	"stats.folders":          "Ordner",
	"admin.users":            "Benutzer",
	"admin.role_changed":     "Rolle von %s auf %s geändert",
	"admin.password_changed": "Passwort von %s geändert",
	"admin.user_deleted":     "Benutzer %s gelöscht",
	"admin.delete_confirm":   "Benutzer %q und alle seine Dateien löschen?",
	"plugin.updated":         "Plugin %s aktualisiert",
	"language.changed":       "Sprache auf %s gesetzt",
	"theme.changed":          "Design auf %s gesetzt",
	"admin.super_admin":      "Der Superadmin kann nicht geändert werden",
	"admin.requires_super":   "Nur der Superadmin kann Administratoren ändern",
	"admin.self_delete":      "Sie können Ihr eigenes Konto nicht löschen",
	"admin.unknown_user":     "Unbekannter Benutzer",
	"plugin.invalid":         "Ungültige Plugin-Einstellungen: %s",
}
