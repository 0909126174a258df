package service

import "fmt"

// Cache key builders. Every key the read path writes is derived here, so
// the mutation paths can invalidate without guessing at formats.

func aliasListKey(aliasType string, aliasTypeID int, groupID *string) string {
	if groupID != nil {
		return fmt.Sprintf("group_aliases:%s:%s:%d", *groupID, aliasType, aliasTypeID)
	}
	return fmt.Sprintf("aliases:%s:%d", aliasType, aliasTypeID)
}

func aliasIDsKey(aliasType, alias string, groupID *string) string {
	if groupID != nil {
		return fmt.Sprintf("group_alias_ids:%s:%s:%s", *groupID, aliasType, alias)
	}
	return fmt.Sprintf("alias_ids:%s:%s", aliasType, alias)
}

func aliasStatusKey(pendingID int64) string {
	return fmt.Sprintf("alias_status:%d", pendingID)
}

func bindingListKey(imID string, server *string) string {
	if server != nil {
		return fmt.Sprintf("bindings:%s:%s", imID, *server)
	}
	return fmt.Sprintf("bindings:%s", imID)
}

func defaultBindingKey(imID, server string) string {
	return fmt.Sprintf("default_binding:%s:%s", imID, server)
}

func preferenceListKey(imID string) string {
	return fmt.Sprintf("preferences:%s", imID)
}

func preferenceKey(imID, option string) string {
	return fmt.Sprintf("preference:%s:%s", imID, option)
}

func chunithmAliasListKey(musicID int) string {
	return fmt.Sprintf("chu_aliases:%d", musicID)
}

func chunithmAliasIDsKey(alias string) string {
	return fmt.Sprintf("chu_alias_ids:%s", alias)
}

func musicInfoKey(musicID int) string {
	return fmt.Sprintf("chu_music_info:%d", musicID)
}

func musicTitlesKey() string {
	return "chu_music_titles"
}

func chartDataKey(musicID int) string {
	return fmt.Sprintf("chu_chart_data:%d", musicID)
}
